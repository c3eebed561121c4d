package models

import (
	"github.com/hexasamples/backend/internal/domain/partner"
)

// StoreModel is the persistence model for the Store aggregate root.
type StoreModel struct {
	AggregateModel
	Code      int    `gorm:"not null;uniqueIndex:idx_store_code"`
	LegalName string `gorm:"type:varchar(200);not null"`
	TradeName string `gorm:"type:varchar(200);not null"`
	CNPJ      string `gorm:"column:cnpj;type:varchar(14);not null;index"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store entity.
func (m *StoreModel) ToDomain() *partner.Store {
	return &partner.Store{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		LegalName:         m.LegalName,
		TradeName:         m.TradeName,
		CNPJ:              m.CNPJ,
	}
}

// FromDomain populates the persistence model from a domain Store entity.
func (m *StoreModel) FromDomain(s *partner.Store) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.LegalName = s.LegalName
	m.TradeName = s.TradeName
	m.CNPJ = s.CNPJ
}

// StoreModelFromDomain creates a new persistence model from a domain Store entity.
func StoreModelFromDomain(s *partner.Store) *StoreModel {
	m := &StoreModel{}
	m.FromDomain(s)
	return m
}

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	AggregateModel
	CPF  string `gorm:"column:cpf;type:varchar(11);not null;uniqueIndex:idx_customer_cpf"`
	Name string `gorm:"type:varchar(200);not null;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CPF:               m.CPF,
		Name:              m.Name,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CPF = c.CPF
	m.Name = c.Name
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
