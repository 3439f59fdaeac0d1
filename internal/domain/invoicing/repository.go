package invoicing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence. The
// record store must uphold all-or-nothing mutation semantics: an invoice
// write always carries its items and its counterparty as one unit.
type InvoiceRepository interface {
	// FindByID finds an invoice with its person and items loaded.
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindAll returns the full filtered set ordered by date descending
	// (insertion order for ties). Paging fields of the filter are ignored:
	// windowing is the Paginator's job.
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// Create persists the invoice, its items, and a get-or-create of its
	// counterparty in one transaction. The invoice's Person field supplies
	// the (name, role) dedup key.
	Create(ctx context.Context, invoice *Invoice) error

	// Update persists invoice field changes; when invoice.Items is non-nil
	// the stored items are wholesale replaced, not merged.
	Update(ctx context.Context, invoice *Invoice, replaceItems bool) error

	// Delete removes the invoice and cascades to its items.
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkAllPaidForPerson marks every unpaid invoice of the person as paid
	// and returns how many rows changed.
	MarkAllPaidForPerson(ctx context.Context, personID uuid.UUID) (int64, error)
}

// PersonRepository defines the interface for counterparty persistence.
type PersonRepository interface {
	// FindByID finds a person by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)

	// GetOrCreate looks a person up by the exact (name, role) pair and
	// creates one when absent.
	GetOrCreate(ctx context.Context, name string, role PersonRole) (*Person, error)

	// Names returns all distinct person names.
	Names(ctx context.Context) ([]string, error)
}
