package persistence

import (
	"context"

	"github.com/hexasamples/backend/internal/application/uow"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// RecorderFactory builds an event recorder writing through the given handle
type RecorderFactory func(tx *gorm.DB) shared.EventRecorder

// GormUnitOfWork implements uow.UnitOfWork with GORM transactions.
type GormUnitOfWork struct {
	db       *gorm.DB
	recorder RecorderFactory
}

// NewGormUnitOfWork creates a unit of work. Events recorded inside Do are
// written by recorder(tx) so they commit or roll back with the aggregates.
func NewGormUnitOfWork(db *gorm.DB, recorder RecorderFactory) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, recorder: recorder}
}

// Do runs fn within a database transaction and reports the rows it wrote
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) (shared.SaveResult, error) {
	changes := &changeCounter{}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, u.bind(tx, changes))
	})
	if err != nil {
		return shared.SaveResult{}, err
	}
	return shared.SaveResult{Changes: changes.n}, nil
}

// Repositories returns repositories on the plain connection
func (u *GormUnitOfWork) Repositories() uow.Repositories {
	return u.bind(u.db, nil)
}

func (u *GormUnitOfWork) bind(db *gorm.DB, changes *changeCounter) *gormRepositories {
	var events shared.EventRecorder = discardRecorder{}
	if u.recorder != nil {
		events = &countingRecorder{next: u.recorder(db), changes: changes}
	}
	return &gormRepositories{db: db, changes: changes, events: events}
}

// gormRepositories hands out repositories sharing one handle and change counter
type gormRepositories struct {
	db      *gorm.DB
	changes *changeCounter
	events  shared.EventRecorder
}

func (r *gormRepositories) SalesOrders() trade.SalesOrderRepository {
	repo := NewGormSalesOrderRepository(r.db)
	repo.changes = r.changes
	return repo
}

func (r *gormRepositories) Stores() partner.StoreRepository {
	repo := NewGormStoreRepository(r.db)
	repo.changes = r.changes
	return repo
}

func (r *gormRepositories) Customers() partner.CustomerRepository {
	repo := NewGormCustomerRepository(r.db)
	repo.changes = r.changes
	return repo
}

func (r *gormRepositories) Products() catalog.ProductRepository {
	repo := NewGormProductRepository(r.db)
	repo.changes = r.changes
	return repo
}

func (r *gormRepositories) Events() shared.EventRecorder {
	return r.events
}

// countingRecorder adds one change per outbox row written
type countingRecorder struct {
	next    shared.EventRecorder
	changes *changeCounter
}

func (c *countingRecorder) Record(ctx context.Context, events ...shared.DomainEvent) error {
	if err := c.next.Record(ctx, events...); err != nil {
		return err
	}
	c.changes.add(int64(len(events)))
	return nil
}

type discardRecorder struct{}

func (discardRecorder) Record(context.Context, ...shared.DomainEvent) error { return nil }

var (
	_ uow.UnitOfWork   = (*GormUnitOfWork)(nil)
	_ uow.Repositories = (*gormRepositories)(nil)
)
