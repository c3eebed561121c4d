package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SalePrice is the price of a product at one store
type SalePrice struct {
	ID      uuid.UUID
	StoreID uuid.UUID
	Value   decimal.Decimal
}

// Product is a sellable item with per-store sale prices
type Product struct {
	shared.BaseAggregateRoot
	Code        string
	Description string
	SalePrices  []SalePrice
}

// NewProduct registers a product without prices. Codes are upper-cased.
func NewProduct(code, description string) (*Product, error) {
	return NewProductWithID(uuid.Nil, code, description)
}

func NewProductWithID(id uuid.UUID, code, description string) (*Product, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Product description cannot be empty")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		Code:              code,
		Description:       description,
	}
	p.AddDomainEvent(NewProductRegisteredEvent(p))
	return p, nil
}

// SalePriceFor returns the price registered for the store. When the store
// has no price of its own the first registered price is used, and a product
// with no prices at all costs zero.
func (p *Product) SalePriceFor(storeID uuid.UUID) decimal.Decimal {
	for _, sp := range p.SalePrices {
		if sp.StoreID == storeID {
			return sp.Value
		}
	}
	if len(p.SalePrices) > 0 {
		return p.SalePrices[0].Value
	}
	return decimal.Zero
}

// SetSalePrice creates or replaces the store's price
func (p *Product) SetSalePrice(storeID uuid.UUID, value decimal.Decimal) error {
	if storeID == uuid.Nil {
		return shared.NewDomainError("INVALID_STORE", "Store is required")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}

	for i := range p.SalePrices {
		if p.SalePrices[i].StoreID == storeID {
			old := p.SalePrices[i].Value
			p.SalePrices[i].Value = value
			p.UpdatedAt = time.Now()
			p.AddDomainEvent(NewProductPriceChangedEvent(p, storeID, old, value))
			return nil
		}
	}

	p.SalePrices = append(p.SalePrices, SalePrice{ID: uuid.New(), StoreID: storeID, Value: value})
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewProductPriceChangedEvent(p, storeID, decimal.Zero, value))
	return nil
}

// HasPrice reports whether any store price is registered
func (p *Product) HasPrice() bool {
	return len(p.SalePrices) > 0
}
