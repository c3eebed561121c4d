// Package uow declares the transaction boundary used by application handlers.
package uow

import (
	"context"

	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
)

// Repositories gives access to every repository bound to the same
// transaction (or to none, outside Do)
type Repositories interface {
	SalesOrders() trade.SalesOrderRepository
	Stores() partner.StoreRepository
	Customers() partner.CustomerRepository
	Products() catalog.ProductRepository
	Events() shared.EventRecorder
}

// UnitOfWork runs a function in a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise. A version conflict
// detected while saving surfaces as *shared.ConcurrencyError.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (shared.SaveResult, error)
	// Repositories returns non-transactional repositories for reads
	Repositories() Repositories
}

// RecordEvents moves the aggregate's pending events to the outbox and clears them
func RecordEvents(ctx context.Context, repos Repositories, agg shared.AggregateRoot) error {
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := repos.Events().Record(ctx, events...); err != nil {
		return err
	}
	agg.ClearDomainEvents()
	return nil
}
