package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
)

// SalesOrderFilter narrows a sales order listing
type SalesOrderFilter struct {
	shared.Filter
	Status     *OrderStatus
	StoreID    *uuid.UUID
	CustomerID *uuid.UUID
}

// SalesOrderRepository persists sales orders with their items
type SalesOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	FindAll(ctx context.Context, filter SalesOrderFilter) ([]SalesOrder, int64, error)
	// Save inserts a new order or updates an existing one. Updates are
	// checked against the loaded version and fail with a
	// *shared.ConcurrencyError when someone else saved first.
	Save(ctx context.Context, order *SalesOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
}
