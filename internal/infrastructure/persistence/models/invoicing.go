package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// PersonModel is the persistence model for the Person domain entity.
// The (name, role) pair is the dedup key for get-or-create on invoice writes.
type PersonModel struct {
	BaseModel
	Name string               `gorm:"type:varchar(200);not null;uniqueIndex:idx_person_name_role,priority:1"`
	Role invoicing.PersonRole `gorm:"type:varchar(20);not null;uniqueIndex:idx_person_name_role,priority:2"`
}

// TableName returns the table name for GORM
func (PersonModel) TableName() string {
	return "persons"
}

// ToDomain converts the persistence model to a domain Person entity.
func (m *PersonModel) ToDomain() *invoicing.Person {
	return &invoicing.Person{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Role:       m.Role,
	}
}

// FromDomain populates the persistence model from a domain Person entity.
func (m *PersonModel) FromDomain(p *invoicing.Person) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Role = p.Role
}

// InvoiceModel is the persistence model for the Invoice domain entity.
type InvoiceModel struct {
	BaseModel
	PersonID                uuid.UUID             `gorm:"type:uuid;not null;index"`
	Person                  *PersonModel          `gorm:"foreignKey:PersonID"`
	InvoiceType             invoicing.InvoiceType `gorm:"type:varchar(20);not null;index"`
	Amount                  decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Date                    time.Time             `gorm:"type:date;not null;index"`
	IsPaid                  bool                  `gorm:"not null;default:false;index"`
	TravelText              string                `gorm:"type:text"`
	AdditionalChargePercent decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	AdditionalChargeAmount  decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TransportCharge         decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Subtotal                decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal              decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	DocumentPath            string                `gorm:"type:varchar(500)"`
	Items                   []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseEntity:              m.BaseModel.ToDomain(),
		PersonID:                m.PersonID,
		InvoiceType:             m.InvoiceType,
		Amount:                  m.Amount,
		Date:                    m.Date,
		IsPaid:                  m.IsPaid,
		TravelText:              m.TravelText,
		AdditionalChargePercent: m.AdditionalChargePercent,
		AdditionalChargeAmount:  m.AdditionalChargeAmount,
		TransportCharge:         m.TransportCharge,
		Subtotal:                m.Subtotal,
		GrandTotal:              m.GrandTotal,
		DocumentPath:            m.DocumentPath,
	}
	if m.Person != nil {
		inv.Person = m.Person.ToDomain()
	}
	if len(m.Items) > 0 {
		inv.Items = make([]invoicing.InvoiceItem, len(m.Items))
		for i := range m.Items {
			inv.Items[i] = *m.Items[i].ToDomain()
		}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
// The Person association is intentionally not populated: the repository
// resolves the counterparty separately so GORM never upserts it by accident.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.PersonID = inv.PersonID
	m.InvoiceType = inv.InvoiceType
	m.Amount = inv.Amount
	m.Date = inv.Date
	m.IsPaid = inv.IsPaid
	m.TravelText = inv.TravelText
	m.AdditionalChargePercent = inv.AdditionalChargePercent
	m.AdditionalChargeAmount = inv.AdditionalChargeAmount
	m.TransportCharge = inv.TransportCharge
	m.Subtotal = inv.Subtotal
	m.GrandTotal = inv.GrandTotal
	m.DocumentPath = inv.DocumentPath
}

// InvoiceItemModel is the persistence model for one invoice line item.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName     string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Unit         string          `gorm:"type:varchar(50)"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() *invoicing.InvoiceItem {
	return &invoicing.InvoiceItem{
		BaseEntity:   m.BaseModel.ToDomain(),
		InvoiceID:    m.InvoiceID,
		ItemName:     m.ItemName,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		PricePerUnit: m.PricePerUnit,
		Total:        m.Total,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem.
func (m *InvoiceItemModel) FromDomain(item *invoicing.InvoiceItem) {
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.ItemName = item.ItemName
	m.Quantity = item.Quantity
	m.Unit = item.Unit
	m.PricePerUnit = item.PricePerUnit
	m.Total = item.Total
}
