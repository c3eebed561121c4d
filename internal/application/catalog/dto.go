package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// SalePriceRequest is a store price given on product creation
type SalePriceRequest struct {
	StoreID uuid.UUID       `json:"store_id" binding:"required"`
	Price   decimal.Decimal `json:"price" binding:"required"`
}

// CreateProductRequest represents a request to register a product
type CreateProductRequest struct {
	ID          *uuid.UUID         `json:"id"`
	Code        string             `json:"code" binding:"required,min=1,max=50"`
	Description string             `json:"description" binding:"required,min=1,max=200"`
	SalePrices  []SalePriceRequest `json:"sale_prices" binding:"omitempty,dive"`
}

// SetSalePriceRequest represents a request to set a product price at a store
type SetSalePriceRequest struct {
	StoreID uuid.UUID       `json:"store_id" binding:"required"`
	Price   decimal.Decimal `json:"price" binding:"required"`
}

// ListProductsRequest carries paging for the product listing
type ListProductsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
}

// SalePriceResponse is a store price in API responses
type SalePriceResponse struct {
	StoreID uuid.UUID       `json:"store_id"`
	Price   decimal.Decimal `json:"price"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID           `json:"id"`
	Code        string              `json:"code"`
	Description string              `json:"description"`
	SalePrices  []SalePriceResponse `json:"sale_prices"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Version     int                 `json:"version"`
}

// ToProductResponse converts a product to its API view
func ToProductResponse(p *catalog.Product) ProductResponse {
	prices := make([]SalePriceResponse, len(p.SalePrices))
	for i, sp := range p.SalePrices {
		prices[i] = SalePriceResponse{StoreID: sp.StoreID, Price: sp.Value}
	}
	return ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Description: p.Description,
		SalePrices:  prices,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.GetVersion(),
	}
}
