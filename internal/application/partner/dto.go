package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/partner"
)

// CreateStoreRequest represents a request to register a store
type CreateStoreRequest struct {
	ID        *uuid.UUID `json:"id"`
	Code      int        `json:"code" binding:"required,min=1"`
	LegalName string     `json:"legal_name" binding:"required,min=1,max=200"`
	TradeName string     `json:"trade_name" binding:"max=200"`
	CNPJ      string     `json:"cnpj" binding:"required,digits=14"`
}

// StoreResponse represents a store in API responses
type StoreResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      int       `json:"code"`
	LegalName string    `json:"legal_name"`
	TradeName string    `json:"trade_name"`
	CNPJ      string    `json:"cnpj"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCustomerRequest represents a request to register a customer
type CreateCustomerRequest struct {
	ID   *uuid.UUID `json:"id"`
	CPF  string     `json:"cpf" binding:"required,digits=11"`
	Name string     `json:"name" binding:"required,min=1,max=200"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	CPF       string    `json:"cpf"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListRequest carries paging for registry listings
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
}

// ToStoreResponse converts a store to its API view
func ToStoreResponse(s *partner.Store) StoreResponse {
	return StoreResponse{
		ID:        s.ID,
		Code:      s.Code,
		LegalName: s.LegalName,
		TradeName: s.TradeName,
		CNPJ:      s.CNPJ,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToCustomerResponse converts a customer to its API view
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		CPF:       c.CPF,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
