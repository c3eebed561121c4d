package trade

import (
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
)

// CreateSalesOrderCommand opens a new order for a customer at a store.
// ID is optional and lets the client choose the order ID.
type CreateSalesOrderCommand struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	StoreID    uuid.UUID
}

// AddProductCommand adds units of a product to an order
type AddProductCommand struct {
	SalesOrderID uuid.UUID
	ProductID    uuid.UUID
	Quantity     int
}

// RemoveProductQuantityCommand takes units of a product off an order
type RemoveProductQuantityCommand struct {
	SalesOrderID uuid.UUID
	ProductID    uuid.UUID
	Quantity     int
}

// RemoveProductCommand drops a product line from an order
type RemoveProductCommand struct {
	SalesOrderID uuid.UUID
	ProductID    uuid.UUID
}

// CorrectStoreAndCustomerCommand replaces the store and customer of an order
type CorrectStoreAndCustomerCommand struct {
	SalesOrderID uuid.UUID
	CustomerID   uuid.UUID
	StoreID      uuid.UUID
}

// UpdateProgressCommand moves a closed order through fulfillment
type UpdateProgressCommand struct {
	SalesOrderID uuid.UUID
	Status       string
}

type CloseSalesOrderCommand struct {
	SalesOrderID uuid.UUID
}

type CancelSalesOrderCommand struct {
	SalesOrderID uuid.UUID
	Reason       string
}

// GetSalesOrderQuery loads one order
type GetSalesOrderQuery struct {
	SalesOrderID uuid.UUID
}

// ListSalesOrdersQuery lists orders page by page
type ListSalesOrdersQuery struct {
	Filter     shared.Filter
	Status     string
	StoreID    *uuid.UUID
	CustomerID *uuid.UUID
}

func (q ListSalesOrdersQuery) toFilter() (trade.SalesOrderFilter, shared.Result) {
	f := trade.SalesOrderFilter{Filter: q.Filter, StoreID: q.StoreID, CustomerID: q.CustomerID}
	if q.Status != "" {
		status, ok := trade.ParseOrderStatus(q.Status)
		if !ok {
			return f, shared.InvalidParameters("Unknown order status "+q.Status, "status")
		}
		f.Status = &status
	}
	return f, shared.Success()
}
