package invoicing

// Paginate slices an offset/limit window out of the filtered set. It applies
// after all filtering and never feeds back into aggregation: totals and
// counts are always computed over the full set. An out-of-range skip yields
// an empty page, not an error.
func Paginate(invoices []Invoice, skip, take int) []Invoice {
	if skip < 0 {
		skip = 0
	}
	if take < 1 {
		take = DefaultTake
	}
	if skip >= len(invoices) {
		return []Invoice{}
	}
	end := skip + take
	if end > len(invoices) {
		end = len(invoices)
	}
	return invoices[skip:end]
}
