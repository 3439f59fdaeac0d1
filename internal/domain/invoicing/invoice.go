package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes purchase invoices (from vendors) from sale
// invoices (to customers).
type InvoiceType string

const (
	InvoiceTypePurchase InvoiceType = "purchase"
	InvoiceTypeSale     InvoiceType = "sale"
)

// IsValid checks if the type is a valid InvoiceType
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypePurchase, InvoiceTypeSale:
		return true
	}
	return false
}

// String returns the string representation of InvoiceType
func (t InvoiceType) String() string {
	return string(t)
}

// Invoice is the ledger's central record: a commercial transaction tied to
// exactly one counterparty. Charge and total fields are trusted as stored;
// this layer never recomputes grand_total from subtotal and charges.
type Invoice struct {
	shared.BaseEntity
	PersonID                uuid.UUID       `json:"person_id"`
	Person                  *Person         `json:"person,omitempty"`
	InvoiceType             InvoiceType     `json:"invoice_type"`
	Amount                  decimal.Decimal `json:"amount"`
	Date                    time.Time       `json:"date"`
	IsPaid                  bool            `json:"is_paid"`
	TravelText              string          `json:"travel_text"`
	AdditionalChargePercent decimal.Decimal `json:"additional_charge_percent"`
	AdditionalChargeAmount  decimal.Decimal `json:"additional_charge_amount"`
	TransportCharge         decimal.Decimal `json:"transport_charge"`
	Subtotal                decimal.Decimal `json:"subtotal"`
	GrandTotal              decimal.Decimal `json:"grand_total"`
	DocumentPath            string          `json:"document_path"`
	Items                   []InvoiceItem   `json:"items"`
}

// InvoiceItem is a single line of an invoice. Items live and die with their
// invoice: updates replace the whole set, deletes cascade.
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	ItemName     string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Total        decimal.Decimal `json:"total"`
}

// NewInvoice creates an invoice for the given person with validated type.
func NewInvoice(personID uuid.UUID, invoiceType InvoiceType, amount decimal.Decimal, date time.Time) (*Invoice, error) {
	if personID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "invoice requires a person")
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invoice type must be purchase or sale")
	}
	return &Invoice{
		BaseEntity:  shared.NewBaseEntity(),
		PersonID:    personID,
		InvoiceType: invoiceType,
		Amount:      amount,
		Date:        date,
	}, nil
}

// NewInvoiceItem creates a line item for the given invoice.
func NewInvoiceItem(invoiceID uuid.UUID, itemName, unit string, quantity, pricePerUnit, total decimal.Decimal) (*InvoiceItem, error) {
	if itemName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "item name is required")
	}
	return &InvoiceItem{
		BaseEntity:   shared.NewBaseEntity(),
		InvoiceID:    invoiceID,
		ItemName:     itemName,
		Quantity:     quantity,
		Unit:         unit,
		PricePerUnit: pricePerUnit,
		Total:        total,
	}, nil
}

// MarkPaid marks the invoice as paid.
func (i *Invoice) MarkPaid() {
	i.IsPaid = true
	i.UpdatedAt = time.Now()
}

// PersonName returns the counterparty name when the person is loaded.
func (i *Invoice) PersonName() string {
	if i.Person == nil {
		return ""
	}
	return i.Person.Name
}
