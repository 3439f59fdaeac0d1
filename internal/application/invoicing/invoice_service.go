package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PersonInput supplies the (name, role) dedup key for get-or-create of the
// invoice's counterparty.
type PersonInput struct {
	Name string
	Role string
}

// InvoiceItemInput is one line item of an invoice write.
type InvoiceItemInput struct {
	ItemName     string
	Quantity     decimal.Decimal
	Unit         string
	PricePerUnit decimal.Decimal
	Total        decimal.Decimal
}

// CreateInvoiceInput carries a full invoice write: counterparty, invoice
// fields, and line items, persisted as one transactional unit.
type CreateInvoiceInput struct {
	Person                  PersonInput
	InvoiceType             string
	Amount                  decimal.Decimal
	Date                    time.Time
	IsPaid                  bool
	TravelText              string
	AdditionalChargePercent decimal.Decimal
	AdditionalChargeAmount  decimal.Decimal
	TransportCharge         decimal.Decimal
	Subtotal                decimal.Decimal
	GrandTotal              decimal.Decimal
	DocumentPath            string
	Items                   []InvoiceItemInput
}

// UpdateInvoiceInput carries a full update. Person and Items are optional:
// nil leaves the stored counterparty and items untouched, a non-nil Items
// slice replaces the stored items wholesale.
type UpdateInvoiceInput struct {
	Person                  *PersonInput
	InvoiceType             string
	Amount                  decimal.Decimal
	Date                    time.Time
	IsPaid                  bool
	TravelText              string
	AdditionalChargePercent decimal.Decimal
	AdditionalChargeAmount  decimal.Decimal
	TransportCharge         decimal.Decimal
	Subtotal                decimal.Decimal
	GrandTotal              decimal.Decimal
	DocumentPath            string
	Items                   []InvoiceItemInput
	ReplaceItems            bool
}

// PatchInvoiceInput carries a partial update; nil fields are left untouched.
type PatchInvoiceInput struct {
	Person                  *PersonInput
	InvoiceType             *string
	Amount                  *decimal.Decimal
	Date                    *time.Time
	IsPaid                  *bool
	TravelText              *string
	AdditionalChargePercent *decimal.Decimal
	AdditionalChargeAmount  *decimal.Decimal
	TransportCharge         *decimal.Decimal
	Subtotal                *decimal.Decimal
	GrandTotal              *decimal.Decimal
	DocumentPath            *string
	Items                   []InvoiceItemInput
	ReplaceItems            bool
}

// InvoiceService serves the write side of the ledger. Every successful
// mutation ends with a namespace invalidation so readers never serve the
// pre-mutation cached aggregates past one cache round-trip.
type InvoiceService struct {
	invoices    invoicing.InvoiceRepository
	persons     invoicing.PersonRepository
	invalidator *InvalidationCoordinator
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices invoicing.InvoiceRepository,
	persons invoicing.PersonRepository,
	invalidator *InvalidationCoordinator,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoices:    invoices,
		persons:     persons,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Create persists a new invoice with its items and counterparty as one unit.
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceDetail, error) {
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "items_data is required")
	}

	person, err := invoicing.NewPerson(input.Person.Name, invoicing.PersonRole(input.Person.Role))
	if err != nil {
		return nil, err
	}

	invoice, err := invoicing.NewInvoice(person.ID, invoicing.InvoiceType(input.InvoiceType), input.Amount, input.Date)
	if err != nil {
		return nil, err
	}
	invoice.Person = person
	invoice.IsPaid = input.IsPaid
	invoice.TravelText = input.TravelText
	invoice.AdditionalChargePercent = input.AdditionalChargePercent
	invoice.AdditionalChargeAmount = input.AdditionalChargeAmount
	invoice.TransportCharge = input.TransportCharge
	invoice.Subtotal = input.Subtotal
	invoice.GrandTotal = input.GrandTotal
	invoice.DocumentPath = input.DocumentPath

	items, err := buildItems(invoice.ID, input.Items)
	if err != nil {
		return nil, err
	}
	invoice.Items = items

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.invalidator.OnMutation(ctx)
	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_type", invoice.InvoiceType.String()))

	return toInvoiceDetail(invoice), nil
}

// Update applies a full update to an existing invoice.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*InvoiceDetail, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	invoiceType := invoicing.InvoiceType(input.InvoiceType)
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invoice type must be purchase or sale")
	}

	if input.Person != nil && invoice.Person != nil {
		if input.Person.Name != "" {
			invoice.Person.Name = input.Person.Name
		}
		if input.Person.Role != "" {
			role := invoicing.PersonRole(input.Person.Role)
			if !role.IsValid() {
				return nil, shared.NewDomainError("INVALID_INPUT", "person role must be vendor or customer")
			}
			invoice.Person.Role = role
		}
	}

	invoice.InvoiceType = invoiceType
	invoice.Amount = input.Amount
	invoice.Date = input.Date
	invoice.IsPaid = input.IsPaid
	invoice.TravelText = input.TravelText
	invoice.AdditionalChargePercent = input.AdditionalChargePercent
	invoice.AdditionalChargeAmount = input.AdditionalChargeAmount
	invoice.TransportCharge = input.TransportCharge
	invoice.Subtotal = input.Subtotal
	invoice.GrandTotal = input.GrandTotal
	invoice.DocumentPath = input.DocumentPath
	invoice.UpdatedAt = time.Now()

	if input.ReplaceItems {
		items, err := buildItems(invoice.ID, input.Items)
		if err != nil {
			return nil, err
		}
		invoice.Items = items
	}

	if err := s.invoices.Update(ctx, invoice, input.ReplaceItems); err != nil {
		return nil, err
	}

	s.invalidator.OnMutation(ctx)
	s.logger.Info("invoice updated", zap.String("invoice_id", id.String()))

	return toInvoiceDetail(invoice), nil
}

// PartialUpdate applies only the supplied fields to an existing invoice.
func (s *InvoiceService) PartialUpdate(ctx context.Context, id uuid.UUID, input PatchInvoiceInput) (*InvoiceDetail, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Person != nil && invoice.Person != nil {
		if input.Person.Name != "" {
			invoice.Person.Name = input.Person.Name
		}
		if input.Person.Role != "" {
			role := invoicing.PersonRole(input.Person.Role)
			if !role.IsValid() {
				return nil, shared.NewDomainError("INVALID_INPUT", "person role must be vendor or customer")
			}
			invoice.Person.Role = role
		}
	}

	if input.InvoiceType != nil {
		invoiceType := invoicing.InvoiceType(*input.InvoiceType)
		if !invoiceType.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "invoice type must be purchase or sale")
		}
		invoice.InvoiceType = invoiceType
	}
	if input.Amount != nil {
		invoice.Amount = *input.Amount
	}
	if input.Date != nil {
		invoice.Date = *input.Date
	}
	if input.IsPaid != nil {
		if *input.IsPaid {
			invoice.MarkPaid()
		} else {
			invoice.IsPaid = false
		}
	}
	if input.TravelText != nil {
		invoice.TravelText = *input.TravelText
	}
	if input.AdditionalChargePercent != nil {
		invoice.AdditionalChargePercent = *input.AdditionalChargePercent
	}
	if input.AdditionalChargeAmount != nil {
		invoice.AdditionalChargeAmount = *input.AdditionalChargeAmount
	}
	if input.TransportCharge != nil {
		invoice.TransportCharge = *input.TransportCharge
	}
	if input.Subtotal != nil {
		invoice.Subtotal = *input.Subtotal
	}
	if input.GrandTotal != nil {
		invoice.GrandTotal = *input.GrandTotal
	}
	if input.DocumentPath != nil {
		invoice.DocumentPath = *input.DocumentPath
	}
	invoice.UpdatedAt = time.Now()

	if input.ReplaceItems {
		items, err := buildItems(invoice.ID, input.Items)
		if err != nil {
			return nil, err
		}
		invoice.Items = items
	}

	if err := s.invoices.Update(ctx, invoice, input.ReplaceItems); err != nil {
		return nil, err
	}

	s.invalidator.OnMutation(ctx)
	s.logger.Info("invoice patched", zap.String("invoice_id", id.String()))

	return toInvoiceDetail(invoice), nil
}

// Delete removes an invoice and its items.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.invoices.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.invoices.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.OnMutation(ctx)
	s.logger.Info("invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

// MarkAllPaid marks every unpaid invoice of the person as paid and returns
// how many invoices changed. An unknown person is a not-found error.
func (s *InvoiceService) MarkAllPaid(ctx context.Context, personID uuid.UUID) (int64, error) {
	if _, err := s.persons.FindByID(ctx, personID); err != nil {
		return 0, err
	}

	count, err := s.invoices.MarkAllPaidForPerson(ctx, personID)
	if err != nil {
		return 0, err
	}

	s.invalidator.OnMutation(ctx)
	s.logger.Info("invoices marked paid",
		zap.String("person_id", personID.String()),
		zap.Int64("count", count))
	return count, nil
}

func buildItems(invoiceID uuid.UUID, inputs []InvoiceItemInput) ([]invoicing.InvoiceItem, error) {
	items := make([]invoicing.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		item, err := invoicing.NewInvoiceItem(invoiceID, in.ItemName, in.Unit, in.Quantity, in.PricePerUnit, in.Total)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}
