package models

import (
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	Code        string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_code"`
	Description string           `gorm:"type:varchar(500);not null"`
	SalePrices  []SalePriceModel `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Description:       m.Description,
		SalePrices:        make([]catalog.SalePrice, len(m.SalePrices)),
	}
	for i, sp := range m.SalePrices {
		p.SalePrices[i] = sp.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Description = p.Description
	m.SalePrices = make([]SalePriceModel, len(p.SalePrices))
	for i, sp := range p.SalePrices {
		m.SalePrices[i] = SalePriceModel{
			ID:        sp.ID,
			ProductID: p.ID,
			StoreID:   sp.StoreID,
			Value:     sp.Value,
			Position:  i,
		}
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// SalePriceModel stores one product price per store. Position keeps the
// registration order, which decides the fallback price.
type SalePriceModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sale_price_product_store,priority:1"`
	StoreID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sale_price_product_store,priority:2"`
	Value     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Position  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SalePriceModel) TableName() string {
	return "sale_prices"
}

// ToDomain converts the persistence model to a domain SalePrice value.
func (m SalePriceModel) ToDomain() catalog.SalePrice {
	return catalog.SalePrice{
		ID:      m.ID,
		StoreID: m.StoreID,
		Value:   m.Value,
	}
}
