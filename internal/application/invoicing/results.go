package invoicing

import (
	"time"

	"github.com/ledger/backend/internal/domain/invoicing"
)

// Result payloads for the query API. These are what gets cached and what the
// handlers return inside the response envelope, so monetary values are
// converted from decimal to float64 only here, at the JSON edge.

// PersonPayload represents a counterparty in API responses
type PersonPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// InvoiceItemPayload represents an invoice line item in API responses
type InvoiceItemPayload struct {
	ID           string  `json:"id"`
	ItemName     string  `json:"item_name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
	Total        float64 `json:"total"`
}

// InvoiceSummary is one row of a list result
type InvoiceSummary struct {
	ID          string        `json:"id"`
	Person      PersonPayload `json:"person"`
	InvoiceType string        `json:"invoice_type"`
	Amount      float64       `json:"amount"`
	Date        string        `json:"date"`
	IsPaid      bool          `json:"is_paid"`
	GrandTotal  float64       `json:"grand_total"`
}

// InvoiceDetail is the full single-invoice payload
type InvoiceDetail struct {
	ID                      string               `json:"id"`
	Person                  PersonPayload        `json:"person"`
	InvoiceType             string               `json:"invoice_type"`
	Amount                  float64              `json:"amount"`
	Date                    string               `json:"date"`
	IsPaid                  bool                 `json:"is_paid"`
	TravelText              string               `json:"travel_text"`
	AdditionalChargePercent float64              `json:"additional_charge_percent"`
	AdditionalChargeAmount  float64              `json:"additional_charge_amount"`
	TransportCharge         float64              `json:"transport_charge"`
	Subtotal                float64              `json:"subtotal"`
	GrandTotal              float64              `json:"grand_total"`
	DocumentPath            string               `json:"document_path,omitempty"`
	Items                   []InvoiceItemPayload `json:"items"`
	CreatedAt               time.Time            `json:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at"`
}

// ListResult is the generic list view payload
type ListResult struct {
	TotalPurchase float64          `json:"total_purchase"`
	TotalSell     float64          `json:"total_sell"`
	Results       []InvoiceSummary `json:"results"`
}

// ScopedResult is the payload for the purchase-only and sale-only views
type ScopedResult struct {
	TotalAmount    float64           `json:"total_amount"`
	TotalPending   float64           `json:"total_pending"`
	Count          int               `json:"count"`
	FiltersApplied map[string]string `json:"filters_applied"`
	Results        []InvoiceSummary  `json:"results"`
}

// DashboardTotals holds the four dashboard totals
type DashboardTotals struct {
	TotalPurchase   float64 `json:"total_purchase"`
	TotalSales      float64 `json:"total_sales"`
	PendingPurchase float64 `json:"pending_purchase"`
	PendingSales    float64 `json:"pending_sales"`
}

// PendingGroupPayload is one row of the dashboard pending breakdown
type PendingGroupPayload struct {
	PersonID    string  `json:"person_id"`
	PersonName  string  `json:"person_name"`
	InvoiceType string  `json:"invoice_type"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// DashboardResult is the cross-cutting dashboard payload
type DashboardResult struct {
	Totals          DashboardTotals       `json:"totals"`
	RecentPurchases []InvoiceSummary      `json:"recent_purchases"`
	RecentSales     []InvoiceSummary      `json:"recent_sales"`
	Pending         []PendingGroupPayload `json:"pending"`
}

// PersonNamesResult is the lookup helper payload
type PersonNamesResult struct {
	PersonNames []string `json:"person_names"`
}

// dateFormat is the wire format for invoice dates in payloads.
const dateFormat = "2006-01-02"

func toPersonPayload(p *invoicing.Person) PersonPayload {
	if p == nil {
		return PersonPayload{}
	}
	return PersonPayload{
		ID:   p.ID.String(),
		Name: p.Name,
		Role: p.Role.String(),
	}
}

func toInvoiceSummary(inv *invoicing.Invoice) InvoiceSummary {
	return InvoiceSummary{
		ID:          inv.ID.String(),
		Person:      toPersonPayload(inv.Person),
		InvoiceType: inv.InvoiceType.String(),
		Amount:      inv.Amount.InexactFloat64(),
		Date:        inv.Date.Format(dateFormat),
		IsPaid:      inv.IsPaid,
		GrandTotal:  inv.GrandTotal.InexactFloat64(),
	}
}

func toInvoiceSummaries(invoices []invoicing.Invoice) []InvoiceSummary {
	summaries := make([]InvoiceSummary, len(invoices))
	for i := range invoices {
		summaries[i] = toInvoiceSummary(&invoices[i])
	}
	return summaries
}

func toInvoiceDetail(inv *invoicing.Invoice) *InvoiceDetail {
	items := make([]InvoiceItemPayload, len(inv.Items))
	for i := range inv.Items {
		item := &inv.Items[i]
		items[i] = InvoiceItemPayload{
			ID:           item.ID.String(),
			ItemName:     item.ItemName,
			Quantity:     item.Quantity.InexactFloat64(),
			Unit:         item.Unit,
			PricePerUnit: item.PricePerUnit.InexactFloat64(),
			Total:        item.Total.InexactFloat64(),
		}
	}
	return &InvoiceDetail{
		ID:                      inv.ID.String(),
		Person:                  toPersonPayload(inv.Person),
		InvoiceType:             inv.InvoiceType.String(),
		Amount:                  inv.Amount.InexactFloat64(),
		Date:                    inv.Date.Format(dateFormat),
		IsPaid:                  inv.IsPaid,
		TravelText:              inv.TravelText,
		AdditionalChargePercent: inv.AdditionalChargePercent.InexactFloat64(),
		AdditionalChargeAmount:  inv.AdditionalChargeAmount.InexactFloat64(),
		TransportCharge:         inv.TransportCharge.InexactFloat64(),
		Subtotal:                inv.Subtotal.InexactFloat64(),
		GrandTotal:              inv.GrandTotal.InexactFloat64(),
		DocumentPath:            inv.DocumentPath,
		Items:                   items,
		CreatedAt:               inv.CreatedAt,
		UpdatedAt:               inv.UpdatedAt,
	}
}

func toPendingGroups(groups []invoicing.PendingGroup) []PendingGroupPayload {
	payloads := make([]PendingGroupPayload, len(groups))
	for i, g := range groups {
		payloads[i] = PendingGroupPayload{
			PersonID:    g.PersonID.String(),
			PersonName:  g.PersonName,
			InvoiceType: g.InvoiceType.String(),
			Count:       g.Count,
			TotalAmount: g.TotalAmount.InexactFloat64(),
		}
	}
	return payloads
}
