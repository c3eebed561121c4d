// Package uowtest provides an in-memory unit of work for application tests.
// Aggregates are stored as copies so a rolled back transaction leaves no trace.
package uowtest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/application/uow"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
)

// UnitOfWork is a uow.UnitOfWork over maps
type UnitOfWork struct {
	mu sync.Mutex

	orders    map[uuid.UUID]*trade.SalesOrder
	stores    map[uuid.UUID]*partner.Store
	customers map[uuid.UUID]*partner.Customer
	products  map[uuid.UUID]*catalog.Product
	events    []shared.DomainEvent

	// FailRecord makes recording events fail, to exercise rollbacks
	FailRecord error

	Commits   int
	Rollbacks int
}

var _ uow.UnitOfWork = (*UnitOfWork)(nil)

func New() *UnitOfWork {
	return &UnitOfWork{
		orders:    make(map[uuid.UUID]*trade.SalesOrder),
		stores:    make(map[uuid.UUID]*partner.Store),
		customers: make(map[uuid.UUID]*partner.Customer),
		products:  make(map[uuid.UUID]*catalog.Product),
	}
}

// Do runs fn and restores the previous state if it fails. Calls are serialized.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) (shared.SaveResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	snap := u.snapshot()
	tx := &repos{u: u}
	if err := fn(ctx, tx); err != nil {
		u.restore(snap)
		u.Rollbacks++
		return shared.SaveResult{}, err
	}
	u.Commits++
	return shared.SaveResult{Changes: tx.changes}, nil
}

// Repositories returns repositories outside any transaction
func (u *UnitOfWork) Repositories() uow.Repositories {
	return &repos{u: u}
}

// AddStore seeds a store
func (u *UnitOfWork) AddStore(s *partner.Store) {
	c := *s
	c.ClearDomainEvents()
	u.stores[s.ID] = &c
}

// AddCustomer seeds a customer
func (u *UnitOfWork) AddCustomer(c *partner.Customer) {
	cp := *c
	cp.ClearDomainEvents()
	u.customers[c.ID] = &cp
}

// AddProduct seeds a product
func (u *UnitOfWork) AddProduct(p *catalog.Product) {
	u.products[p.ID] = cloneProduct(p)
}

// AddOrder seeds a sales order
func (u *UnitOfWork) AddOrder(o *trade.SalesOrder) {
	u.orders[o.ID] = cloneOrder(o)
}

// Order returns the stored copy of an order
func (u *UnitOfWork) Order(id uuid.UUID) (*trade.SalesOrder, bool) {
	o, ok := u.orders[id]
	if !ok {
		return nil, false
	}
	return cloneOrder(o), true
}

// Events returns every committed event
func (u *UnitOfWork) Events() []shared.DomainEvent {
	return append([]shared.DomainEvent(nil), u.events...)
}

// EventTypes returns the type of every committed event
func (u *UnitOfWork) EventTypes() []string {
	types := make([]string, len(u.events))
	for i, e := range u.events {
		types[i] = e.EventType()
	}
	return types
}

type snapshot struct {
	orders    map[uuid.UUID]*trade.SalesOrder
	stores    map[uuid.UUID]*partner.Store
	customers map[uuid.UUID]*partner.Customer
	products  map[uuid.UUID]*catalog.Product
	events    int
}

func (u *UnitOfWork) snapshot() snapshot {
	return snapshot{
		orders:    copyMap(u.orders),
		stores:    copyMap(u.stores),
		customers: copyMap(u.customers),
		products:  copyMap(u.products),
		events:    len(u.events),
	}
}

func (u *UnitOfWork) restore(s snapshot) {
	u.orders = s.orders
	u.stores = s.stores
	u.customers = s.customers
	u.products = s.products
	u.events = u.events[:s.events]
}

func copyMap[T any](m map[uuid.UUID]*T) map[uuid.UUID]*T {
	c := make(map[uuid.UUID]*T, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneOrder(o *trade.SalesOrder) *trade.SalesOrder {
	c := *o
	c.Items = append([]trade.SalesOrderItem(nil), o.Items...)
	c.ClearDomainEvents()
	return &c
}

func cloneProduct(p *catalog.Product) *catalog.Product {
	c := *p
	c.SalePrices = append([]catalog.SalePrice(nil), p.SalePrices...)
	c.ClearDomainEvents()
	return &c
}

type repos struct {
	u       *UnitOfWork
	changes int64
}

func (r *repos) SalesOrders() trade.SalesOrderRepository { return &orderRepo{r} }
func (r *repos) Stores() partner.StoreRepository         { return &storeRepo{r} }
func (r *repos) Customers() partner.CustomerRepository   { return &customerRepo{r} }
func (r *repos) Products() catalog.ProductRepository     { return &productRepo{r} }
func (r *repos) Events() shared.EventRecorder            { return &recorder{r} }

type orderRepo struct{ r *repos }

func (o *orderRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	order, ok := o.r.u.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (o *orderRepo) FindAll(_ context.Context, filter trade.SalesOrderFilter) ([]trade.SalesOrder, int64, error) {
	var matched []trade.SalesOrder
	for _, order := range o.r.u.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.StoreID != nil && order.StoreID != *filter.StoreID {
			continue
		}
		if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
			continue
		}
		matched = append(matched, *cloneOrder(order))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, filter.Filter), int64(len(matched)), nil
}

func (o *orderRepo) Save(_ context.Context, order *trade.SalesOrder) error {
	if stored, ok := o.r.u.orders[order.ID]; ok {
		if stored.Version != order.Version {
			return shared.NewConcurrencyError(trade.AggregateTypeSalesOrder, order.ID.String(), order.Version, nil)
		}
		order.IncrementVersion()
	}
	o.r.u.orders[order.ID] = cloneOrder(order)
	o.r.changes += int64(1 + len(order.Items))
	return nil
}

func (o *orderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := o.r.u.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(o.r.u.orders, id)
	o.r.changes++
	return nil
}

func (o *orderRepo) CountByStatus(_ context.Context) (map[trade.OrderStatus]int64, error) {
	counts := make(map[trade.OrderStatus]int64)
	for _, order := range o.r.u.orders {
		counts[order.Status]++
	}
	return counts, nil
}

type storeRepo struct{ r *repos }

func (s *storeRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Store, error) {
	store, ok := s.r.u.stores[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := *store
	return &c, nil
}

func (s *storeRepo) FindByCode(_ context.Context, code int) (*partner.Store, error) {
	for _, store := range s.r.u.stores {
		if store.Code == code {
			c := *store
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *storeRepo) FindAll(_ context.Context, filter shared.Filter) ([]partner.Store, int64, error) {
	var all []partner.Store
	for _, store := range s.r.u.stores {
		all = append(all, *store)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, filter), int64(len(all)), nil
}

func (s *storeRepo) ExistsByCode(ctx context.Context, code int) (bool, error) {
	_, err := s.FindByCode(ctx, code)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *storeRepo) Save(_ context.Context, store *partner.Store) error {
	c := *store
	c.ClearDomainEvents()
	s.r.u.stores[store.ID] = &c
	s.r.changes++
	return nil
}

type customerRepo struct{ r *repos }

func (c *customerRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, ok := c.r.u.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *customer
	return &cp, nil
}

func (c *customerRepo) FindAll(_ context.Context, filter shared.Filter) ([]partner.Customer, int64, error) {
	var all []partner.Customer
	for _, customer := range c.r.u.customers {
		all = append(all, *customer)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, filter), int64(len(all)), nil
}

func (c *customerRepo) ExistsByCPF(_ context.Context, cpf string) (bool, error) {
	for _, customer := range c.r.u.customers {
		if customer.CPF == cpf {
			return true, nil
		}
	}
	return false, nil
}

func (c *customerRepo) Save(_ context.Context, customer *partner.Customer) error {
	cp := *customer
	cp.ClearDomainEvents()
	c.r.u.customers[customer.ID] = &cp
	c.r.changes++
	return nil
}

type productRepo struct{ r *repos }

func (p *productRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, ok := p.r.u.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneProduct(product), nil
}

func (p *productRepo) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	for _, product := range p.r.u.products {
		if product.Code == code {
			return cloneProduct(product), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (p *productRepo) FindAll(_ context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	var all []catalog.Product
	for _, product := range p.r.u.products {
		all = append(all, *cloneProduct(product))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, filter), int64(len(all)), nil
}

func (p *productRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := p.FindByCode(ctx, code)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *productRepo) Save(_ context.Context, product *catalog.Product) error {
	p.r.u.products[product.ID] = cloneProduct(product)
	p.r.changes += int64(1 + len(product.SalePrices))
	return nil
}

type recorder struct{ r *repos }

func (rec *recorder) Record(_ context.Context, events ...shared.DomainEvent) error {
	if rec.r.u.FailRecord != nil {
		return rec.r.u.FailRecord
	}
	rec.r.u.events = append(rec.r.u.events, events...)
	rec.r.changes += int64(len(events))
	return nil
}

func page[T any](items []T, filter shared.Filter) []T {
	start := filter.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + filter.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
