package invoicing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pagination bounds for list queries
const (
	DefaultSkip = 0
	DefaultTake = 10
	MaxTake     = 1000
)

// dateLayout is the wire format for date filters and invoice dates.
const dateLayout = "2006-01-02"

// monthNames maps calendar month names to their number. The match is
// case-sensitive: "March" is a month filter, "march" is not.
var monthNames = map[string]int{
	"January":   1,
	"February":  2,
	"March":     3,
	"April":     4,
	"May":       5,
	"June":      6,
	"July":      7,
	"August":    8,
	"September": 9,
	"October":   10,
	"November":  11,
	"December":  12,
}

// InvoiceFilter is the normalized predicate set for invoice queries. It is
// produced once by CompileFilter and consumed everywhere else; nil pointer
// fields mean "filter not applied".
type InvoiceFilter struct {
	Month    *int
	Year     *int
	Search   string
	PersonID *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
	IsPaid   *bool
	Skip     int
	Take     int

	// Type scopes the query to one invoice type. It is set by the scoped
	// views, never compiled from request parameters.
	Type *InvoiceType
}

// DefaultInvoiceFilter returns a filter with no predicates and default paging.
func DefaultInvoiceFilter() InvoiceFilter {
	return InvoiceFilter{
		Skip: DefaultSkip,
		Take: DefaultTake,
	}
}

// CompileFilter turns raw string query parameters into a normalized
// InvoiceFilter. Malformed values degrade to "filter not applied" rather than
// failing the request: a bad dropdown value must never 400 the query API.
func CompileFilter(params map[string]string) InvoiceFilter {
	f := DefaultInvoiceFilter()

	if raw, ok := params["month"]; ok {
		if m, ok := parseMonth(raw); ok {
			f.Month = &m
		}
	}

	if raw, ok := params["year"]; ok {
		if y, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			f.Year = &y
		}
	}

	if raw, ok := params["search"]; ok {
		f.Search = strings.TrimSpace(raw)
	}

	if raw, ok := params["person_id"]; ok {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			f.PersonID = &id
		}
	}

	if raw, ok := params["date_from"]; ok {
		if d, err := time.Parse(dateLayout, strings.TrimSpace(raw)); err == nil {
			f.DateFrom = &d
		}
	}

	if raw, ok := params["date_to"]; ok {
		if d, err := time.Parse(dateLayout, strings.TrimSpace(raw)); err == nil {
			f.DateTo = &d
		}
	}

	if raw, ok := params["is_paid"]; ok {
		switch strings.TrimSpace(raw) {
		case "true", "1":
			paid := true
			f.IsPaid = &paid
		case "false", "0":
			paid := false
			f.IsPaid = &paid
		}
	}

	f.Skip, f.Take = parsePaging(params["skip"], params["take"])

	return f
}

// parseMonth accepts a calendar month name or a numeric string in 1..12.
func parseMonth(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if m, ok := monthNames[raw]; ok {
		return m, true
	}
	m, err := strconv.Atoi(raw)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// parsePaging resolves skip/take together: any parse failure or out-of-range
// value resets BOTH to defaults, then take is clamped to MaxTake.
func parsePaging(rawSkip, rawTake string) (int, int) {
	skip, take := DefaultSkip, DefaultTake
	valid := true

	if rawSkip != "" {
		if s, err := strconv.Atoi(strings.TrimSpace(rawSkip)); err == nil {
			skip = s
		} else {
			valid = false
		}
	}
	if rawTake != "" {
		if t, err := strconv.Atoi(strings.TrimSpace(rawTake)); err == nil {
			take = t
		} else {
			valid = false
		}
	}

	if !valid || skip < 0 || take < 1 {
		skip, take = DefaultSkip, DefaultTake
	}
	if take > MaxTake {
		take = MaxTake
	}
	return skip, take
}

// Applied returns the effective filter entries as "key=value" pairs sorted by
// key. The cache key codec hashes exactly these entries, so every recognized
// dimension perturbs the key and ignored parameters never do.
func (f InvoiceFilter) Applied() []string {
	entries := make([]string, 0, 9)

	if f.Month != nil {
		entries = append(entries, fmt.Sprintf("month=%d", *f.Month))
	}
	if f.Year != nil {
		entries = append(entries, fmt.Sprintf("year=%d", *f.Year))
	}
	if f.Search != "" {
		entries = append(entries, "search="+f.Search)
	}
	if f.PersonID != nil {
		entries = append(entries, "person_id="+f.PersonID.String())
	}
	if f.DateFrom != nil {
		entries = append(entries, "date_from="+f.DateFrom.Format(dateLayout))
	}
	if f.DateTo != nil {
		entries = append(entries, "date_to="+f.DateTo.Format(dateLayout))
	}
	if f.IsPaid != nil {
		entries = append(entries, "is_paid="+strconv.FormatBool(*f.IsPaid))
	}
	if f.Type != nil {
		entries = append(entries, "invoice_type="+f.Type.String())
	}
	entries = append(entries, fmt.Sprintf("skip=%d", f.Skip))
	entries = append(entries, fmt.Sprintf("take=%d", f.Take))

	sort.Strings(entries)
	return entries
}

// AppliedMap returns the effective filters keyed by name, for the
// filters_applied echo field of scoped list responses. Paging is excluded:
// it windows the page, it does not filter the set.
func (f InvoiceFilter) AppliedMap() map[string]string {
	applied := make(map[string]string)
	for _, entry := range f.Applied() {
		key, value, _ := strings.Cut(entry, "=")
		if key == "skip" || key == "take" {
			continue
		}
		applied[key] = value
	}
	return applied
}

// WithoutPaging returns a copy of the filter with default paging, used when
// the full filtered set is needed for aggregation.
func (f InvoiceFilter) WithoutPaging() InvoiceFilter {
	f.Skip = DefaultSkip
	f.Take = DefaultTake
	return f
}

// WithType returns a copy of the filter scoped to one invoice type.
func (f InvoiceFilter) WithType(t InvoiceType) InvoiceFilter {
	f.Type = &t
	return f
}

// Matches reports whether the invoice satisfies every active predicate.
func (f InvoiceFilter) Matches(inv *Invoice) bool {
	if f.Type != nil && inv.InvoiceType != *f.Type {
		return false
	}
	if f.Month != nil && int(inv.Date.Month()) != *f.Month {
		return false
	}
	if f.Year != nil && inv.Date.Year() != *f.Year {
		return false
	}
	if f.PersonID != nil && inv.PersonID != *f.PersonID {
		return false
	}
	if f.DateFrom != nil && inv.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && inv.Date.After(*f.DateTo) {
		return false
	}
	if f.IsPaid != nil && inv.IsPaid != *f.IsPaid {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(inv.PersonName()), needle) &&
			!strings.Contains(strings.ToLower(inv.TravelText), needle) {
			return false
		}
	}
	return true
}
