package invoicing

import (
	"strings"

	"github.com/ledger/backend/internal/domain/shared"
)

// PersonRole identifies which side of a transaction a counterparty sits on.
type PersonRole string

const (
	PersonRoleVendor   PersonRole = "vendor"
	PersonRoleCustomer PersonRole = "customer"
)

// IsValid checks if the role is a valid PersonRole
func (r PersonRole) IsValid() bool {
	switch r {
	case PersonRoleVendor, PersonRoleCustomer:
		return true
	}
	return false
}

// String returns the string representation of PersonRole
func (r PersonRole) String() string {
	return string(r)
}

// Person represents a counterparty (vendor or customer) referenced by invoices.
// The (Name, Role) pair is the natural dedup key: invoice ingestion looks a
// person up by that pair and creates one only when absent.
type Person struct {
	shared.BaseEntity
	Name string     `json:"name"`
	Role PersonRole `json:"role"`
}

// NewPerson creates a new Person after validating name and role.
func NewPerson(name string, role PersonRole) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "person name is required")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "person role must be vendor or customer")
	}
	return &Person{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Role:       role,
	}, nil
}
