package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID with its counterparty and items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Person").
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns the full filtered set ordered by date descending.
// Paging is not applied here: aggregation runs over the whole set and
// the caller windows afterwards.
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var rows []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	if err := query.
		Preload("Person").
		Preload("Items").
		Order("date DESC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	invoices := make([]invoicing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// applyFilter translates the compiled filter into WHERE clauses
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("invoice_type = ?", *filter.Type)
	}
	if filter.Month != nil {
		query = query.Where(r.monthExpr()+" = ?", *filter.Month)
	}
	if filter.Year != nil {
		query = query.Where(r.yearExpr()+" = ?", *filter.Year)
	}
	if filter.PersonID != nil {
		query = query.Where("person_id = ?", *filter.PersonID)
	}
	if filter.Search != "" {
		pattern := "%" + lowerPattern(filter.Search) + "%"
		query = query.Where(
			"LOWER(travel_text) LIKE ? OR person_id IN (?)",
			pattern,
			r.db.Model(&models.PersonModel{}).Select("id").Where("LOWER(name) LIKE ?", pattern),
		)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}
	return query
}

// monthExpr returns the dialect-specific month extraction expression.
// Production runs Postgres; tests run SQLite.
func (r *GormInvoiceRepository) monthExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%m', date) AS INTEGER)"
	}
	return "EXTRACT(MONTH FROM date)"
}

func (r *GormInvoiceRepository) yearExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%Y', date) AS INTEGER)"
	}
	return "EXTRACT(YEAR FROM date)"
}

// Create persists the invoice, its counterparty, and its items as one
// transaction. The counterparty is resolved get-or-create on (name, role):
// when a matching person already exists the invoice is rebound to it.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.Person != nil {
			person, err := getOrCreatePerson(tx, invoice.Person.Name, invoice.Person.Role, invoice.Person.ID)
			if err != nil {
				return err
			}
			invoice.PersonID = person.ID
			invoice.Person = person
			for i := range invoice.Items {
				invoice.Items[i].InvoiceID = invoice.ID
			}
		}

		var model models.InvoiceModel
		model.FromDomain(invoice)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}

		for i := range invoice.Items {
			var itemModel models.InvoiceItemModel
			itemModel.FromDomain(&invoice.Items[i])
			if err := tx.Create(&itemModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update persists invoice field changes and, when replaceItems is set,
// swaps the stored items wholesale for the ones on the invoice.
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *invoicing.Invoice, replaceItems bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.Person != nil {
			var personModel models.PersonModel
			personModel.FromDomain(invoice.Person)
			if err := tx.Save(&personModel).Error; err != nil {
				return err
			}
		}

		var model models.InvoiceModel
		model.FromDomain(invoice)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		if replaceItems {
			if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
				return err
			}
			for i := range invoice.Items {
				invoice.Items[i].InvoiceID = invoice.ID
				var itemModel models.InvoiceItemModel
				itemModel.FromDomain(&invoice.Items[i])
				if err := tx.Create(&itemModel).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Delete removes the invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// MarkAllPaidForPerson marks every unpaid invoice of the person as paid
// in one statement and returns how many rows changed
func (r *GormInvoiceRepository) MarkAllPaidForPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("person_id = ? AND is_paid = ?", personID, false).
		Updates(map[string]any{
			"is_paid":    true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
