package invoicing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bounds for the dashboard view
const (
	RecentLimit       = 5
	PendingGroupLimit = 5
)

// ListTotals holds the aggregate figures for the generic list view.
type ListTotals struct {
	TotalPurchase decimal.Decimal
	TotalSell     decimal.Decimal
}

// ScopedTotals holds the aggregate figures for a type-scoped list view.
// Count is the size of the filtered set before pagination.
type ScopedTotals struct {
	TotalAmount  decimal.Decimal
	TotalPending decimal.Decimal
	Count        int
}

// PendingGroup is one row of the dashboard pending breakdown: unpaid invoices
// grouped by counterparty and invoice type.
type PendingGroup struct {
	PersonID    uuid.UUID
	PersonName  string
	InvoiceType InvoiceType
	Count       int
	TotalAmount decimal.Decimal
}

// DashboardSummary holds the cross-cutting dashboard figures.
type DashboardSummary struct {
	TotalPurchase   decimal.Decimal
	TotalSales      decimal.Decimal
	PendingPurchase decimal.Decimal
	PendingSales    decimal.Decimal
	RecentPurchases []Invoice
	RecentSales     []Invoice
	Pending         []PendingGroup
}

// AggregateListTotals sums invoice amounts partitioned by type over the full
// filtered set. Sums over an empty set are decimal zero, never absent.
func AggregateListTotals(invoices []Invoice) ListTotals {
	totals := ListTotals{
		TotalPurchase: decimal.Zero,
		TotalSell:     decimal.Zero,
	}
	for i := range invoices {
		switch invoices[i].InvoiceType {
		case InvoiceTypePurchase:
			totals.TotalPurchase = totals.TotalPurchase.Add(invoices[i].Amount)
		case InvoiceTypeSale:
			totals.TotalSell = totals.TotalSell.Add(invoices[i].Amount)
		}
	}
	return totals
}

// AggregateScopedTotals computes total, pending and count for a type-scoped
// view. The input is expected to already be scoped to one invoice type; the
// pending sum uses an unpaid predicate, not boolean arithmetic over the set.
func AggregateScopedTotals(invoices []Invoice) ScopedTotals {
	totals := ScopedTotals{
		TotalAmount:  decimal.Zero,
		TotalPending: decimal.Zero,
		Count:        len(invoices),
	}
	for i := range invoices {
		totals.TotalAmount = totals.TotalAmount.Add(invoices[i].Amount)
		if !invoices[i].IsPaid {
			totals.TotalPending = totals.TotalPending.Add(invoices[i].Amount)
		}
	}
	return totals
}

// AggregateDashboard computes the dashboard summary in one pass over the full
// filtered set: four totals, the most recent invoices per type, and the
// pending breakdown grouped by (counterparty, invoice type).
func AggregateDashboard(invoices []Invoice) DashboardSummary {
	summary := DashboardSummary{
		TotalPurchase:   decimal.Zero,
		TotalSales:      decimal.Zero,
		PendingPurchase: decimal.Zero,
		PendingSales:    decimal.Zero,
		RecentPurchases: []Invoice{},
		RecentSales:     []Invoice{},
		Pending:         []PendingGroup{},
	}

	type groupKey struct {
		personID    uuid.UUID
		invoiceType InvoiceType
	}
	groups := make(map[groupKey]*PendingGroup)
	groupOrder := make([]groupKey, 0)
	purchases := make([]Invoice, 0)
	sales := make([]Invoice, 0)

	for i := range invoices {
		inv := invoices[i]
		switch inv.InvoiceType {
		case InvoiceTypePurchase:
			summary.TotalPurchase = summary.TotalPurchase.Add(inv.Amount)
			if !inv.IsPaid {
				summary.PendingPurchase = summary.PendingPurchase.Add(inv.Amount)
			}
			purchases = append(purchases, inv)
		case InvoiceTypeSale:
			summary.TotalSales = summary.TotalSales.Add(inv.Amount)
			if !inv.IsPaid {
				summary.PendingSales = summary.PendingSales.Add(inv.Amount)
			}
			sales = append(sales, inv)
		}

		if !inv.IsPaid {
			key := groupKey{personID: inv.PersonID, invoiceType: inv.InvoiceType}
			group, ok := groups[key]
			if !ok {
				group = &PendingGroup{
					PersonID:    inv.PersonID,
					PersonName:  inv.PersonName(),
					InvoiceType: inv.InvoiceType,
					TotalAmount: decimal.Zero,
				}
				groups[key] = group
				groupOrder = append(groupOrder, key)
			}
			group.Count++
			group.TotalAmount = group.TotalAmount.Add(inv.Amount)
		}
	}

	summary.RecentPurchases = recentByDate(purchases, RecentLimit)
	summary.RecentSales = recentByDate(sales, RecentLimit)

	pending := make([]PendingGroup, 0, len(groupOrder))
	for _, key := range groupOrder {
		pending = append(pending, *groups[key])
	}
	// Largest outstanding amount first; first-seen order breaks ties.
	sort.SliceStable(pending, func(a, b int) bool {
		return pending[a].TotalAmount.GreaterThan(pending[b].TotalAmount)
	})
	if len(pending) > PendingGroupLimit {
		pending = pending[:PendingGroupLimit]
	}
	summary.Pending = pending

	return summary
}

// recentByDate returns the most recent invoices ordered by date descending.
// The sort is stable so ties keep their insertion order.
func recentByDate(invoices []Invoice, limit int) []Invoice {
	recent := make([]Invoice, len(invoices))
	copy(recent, invoices)
	sort.SliceStable(recent, func(a, b int) bool {
		return recent[a].Date.After(recent[b].Date)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}
