package handler

import (
	"github.com/google/uuid"
	tradeapp "github.com/hexasamples/backend/internal/application/trade"
	"github.com/hexasamples/backend/internal/domain/shared"
)

// CreateSalesOrderRequest opens an order. Missing customer or store IDs are
// reported by the command itself so both can be returned together.
type CreateSalesOrderRequest struct {
	ID         *uuid.UUID `json:"id"`
	CustomerID uuid.UUID  `json:"customer_id"`
	StoreID    uuid.UUID  `json:"store_id"`
}

// OrdemDeVendaRequest is the create payload of the public POST /OrdemDeVenda
// endpoint, which names the customer pessoaId and the store lojaId.
type OrdemDeVendaRequest struct {
	ID       *uuid.UUID `json:"id"`
	PessoaID uuid.UUID  `json:"pessoaId"`
	LojaID   uuid.UUID  `json:"lojaId"`
}

// AddProductRequest adds units of a product to an order
type AddProductRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// RemoveQuantityRequest takes units of a product off an order
type RemoveQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CorrectStoreAndCustomerRequest replaces the store and customer
type CorrectStoreAndCustomerRequest struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	StoreID    uuid.UUID `json:"store_id" binding:"required"`
}

// UpdateProgressRequest moves a closed order through fulfillment
type UpdateProgressRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelSalesOrderRequest cancels an order
type CancelSalesOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListSalesOrdersRequest filters the order listing
type ListSalesOrdersRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string `form:"search" binding:"max=100"`
	Status     string `form:"status"`
	StoreID    string `form:"store_id" binding:"omitempty,uuid"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

func (r ListSalesOrdersRequest) toQuery() tradeapp.ListSalesOrdersQuery {
	filter := shared.DefaultFilter()
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 {
		filter.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		filter.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		filter.OrderDir = r.OrderDir
	}
	filter.Search = r.Search
	return tradeapp.ListSalesOrdersQuery{
		Filter:     filter,
		Status:     r.Status,
		StoreID:    optionalUUID(r.StoreID),
		CustomerID: optionalUUID(r.CustomerID),
	}
}

// optionalUUID parses a query value already checked by the uuid binding tag
func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
