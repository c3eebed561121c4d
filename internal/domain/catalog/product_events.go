package catalog

import (
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeProduct = "Product"

	EventTypeProductRegistered   = "ProductRegistered"
	EventTypeProductPriceChanged = "ProductPriceChanged"
)

type ProductRegisteredEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
}

func NewProductRegisteredEvent(p *Product) *ProductRegisteredEvent {
	return &ProductRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductRegistered, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Code:            p.Code,
		Description:     p.Description,
	}
}

// ProductPriceChangedEvent is raised when a store price is created or replaced
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	StoreID   uuid.UUID       `json:"store_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

func NewProductPriceChangedEvent(p *Product, storeID uuid.UUID, oldPrice, newPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPriceChanged, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		StoreID:         storeID,
		OldPrice:        oldPrice,
		NewPrice:        newPrice,
	}
}
