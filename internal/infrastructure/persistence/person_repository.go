package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPersonRepository implements invoicing.PersonRepository using GORM
type GormPersonRepository struct {
	db *gorm.DB
}

// NewGormPersonRepository creates a new GormPersonRepository
func NewGormPersonRepository(db *gorm.DB) *GormPersonRepository {
	return &GormPersonRepository{db: db}
}

// FindByID finds a person by ID
func (r *GormPersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Person, error) {
	var model models.PersonModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrCreate returns the person with the given (name, role), creating it
// when no match exists
func (r *GormPersonRepository) GetOrCreate(ctx context.Context, name string, role invoicing.PersonRole) (*invoicing.Person, error) {
	return getOrCreatePerson(r.db.WithContext(ctx), name, role, uuid.New())
}

// Names returns every distinct person name ordered alphabetically
func (r *GormPersonRepository) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&models.PersonModel{}).
		Distinct("name").
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// getOrCreatePerson resolves a person by the (name, role) dedup key inside
// the caller's transaction, creating one with newID when absent. The name is
// normalized before the lookup so it matches the form the constructor stores.
func getOrCreatePerson(tx *gorm.DB, name string, role invoicing.PersonRole, newID uuid.UUID) (*invoicing.Person, error) {
	person, err := invoicing.NewPerson(name, role)
	if err != nil {
		return nil, err
	}
	person.ID = newID

	var model models.PersonModel
	lookupErr := tx.Where("name = ? AND role = ?", person.Name, role).First(&model).Error
	if lookupErr == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return nil, lookupErr
	}

	model = models.PersonModel{}
	model.FromDomain(person)
	if err := tx.Create(&model).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// lowerPattern lowercases a search term for case-insensitive LIKE matching
func lowerPattern(term string) string {
	return strings.ToLower(term)
}

// Ensure GormPersonRepository implements PersonRepository
var _ invoicing.PersonRepository = (*GormPersonRepository)(nil)
