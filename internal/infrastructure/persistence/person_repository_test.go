package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uuidNew(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func TestGormPersonRepository_GetOrCreate(t *testing.T) {
	db := setupInvoicingTestDB(t)
	repo := NewGormPersonRepository(db)

	created, err := repo.GetOrCreate(context.Background(), "Acme", invoicing.PersonRoleVendor)
	require.NoError(t, err)
	assert.Equal(t, "Acme", created.Name)

	// Same (name, role) returns the existing row
	again, err := repo.GetOrCreate(context.Background(), "Acme", invoicing.PersonRoleVendor)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	// Same name with a different role is a different person
	customer, err := repo.GetOrCreate(context.Background(), "Acme", invoicing.PersonRoleCustomer)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, customer.ID)
}

func TestGormPersonRepository_GetOrCreate_NormalizesNameBeforeLookup(t *testing.T) {
	db := setupInvoicingTestDB(t)
	repo := NewGormPersonRepository(db)

	created, err := repo.GetOrCreate(context.Background(), "Acme", invoicing.PersonRoleVendor)
	require.NoError(t, err)

	// A padded name must hit the existing trimmed row, not insert a duplicate
	padded, err := repo.GetOrCreate(context.Background(), "  Acme  ", invoicing.PersonRoleVendor)
	require.NoError(t, err)
	assert.Equal(t, created.ID, padded.ID)
	assert.Equal(t, "Acme", padded.Name)

	names, err := repo.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, names)
}

func TestGormPersonRepository_GetOrCreate_RejectsInvalidInput(t *testing.T) {
	db := setupInvoicingTestDB(t)
	repo := NewGormPersonRepository(db)

	_, err := repo.GetOrCreate(context.Background(), "", invoicing.PersonRoleVendor)
	assert.Error(t, err)

	_, err = repo.GetOrCreate(context.Background(), "Acme", invoicing.PersonRole("tenant"))
	assert.Error(t, err)
}

func TestGormPersonRepository_FindByID(t *testing.T) {
	db := setupInvoicingTestDB(t)
	repo := NewGormPersonRepository(db)

	created, err := repo.GetOrCreate(context.Background(), "Acme", invoicing.PersonRoleVendor)
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, found.Name)
	assert.Equal(t, created.Role, found.Role)

	_, err = repo.FindByID(context.Background(), uuidNew(t))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPersonRepository_Names(t *testing.T) {
	db := setupInvoicingTestDB(t)
	repo := NewGormPersonRepository(db)

	_, err := repo.GetOrCreate(context.Background(), "Globex", invoicing.PersonRoleVendor)
	require.NoError(t, err)
	_, err = repo.GetOrCreate(context.Background(), "Acme", invoicing.PersonRoleVendor)
	require.NoError(t, err)
	// Same name under another role must not duplicate the entry
	_, err = repo.GetOrCreate(context.Background(), "Acme", invoicing.PersonRoleCustomer)
	require.NoError(t, err)

	names, err := repo.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, names)
}

func TestGormPersonRepository_Names_Empty(t *testing.T) {
	db := setupInvoicingTestDB(t)
	repo := NewGormPersonRepository(db)

	names, err := repo.Names(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
