package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	store    *partner.Store
	customer *partner.Customer
	shirt    *catalog.Product
	mug      *catalog.Product
}

func seedOrderFixture(t *testing.T, db *gorm.DB) orderFixture {
	t.Helper()
	ctx := context.Background()

	f := orderFixture{
		store:    newTestStore(t, 1),
		customer: newTestCustomer(t, "52998224725", "Maria da Silva"),
	}
	f.shirt = newTestProduct(t, "SHIRT", f.store.ID, "49.90")
	f.mug = newTestProduct(t, "MUG", f.store.ID, "15.00")

	require.NoError(t, NewGormStoreRepository(db).Save(ctx, f.store))
	require.NoError(t, NewGormCustomerRepository(db).Save(ctx, f.customer))
	require.NoError(t, NewGormProductRepository(db).Save(ctx, f.shirt))
	require.NoError(t, NewGormProductRepository(db).Save(ctx, f.mug))
	return f
}

func newTestOrder(t *testing.T, f orderFixture) *trade.SalesOrder {
	t.Helper()
	order, err := trade.NewSalesOrder(f.store, f.customer)
	require.NoError(t, err)
	return order
}

func TestGormSalesOrderRepository_SaveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	f := seedOrderFixture(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, f)
	require.NoError(t, order.AddProduct(f.shirt, 2))
	require.NoError(t, order.AddProduct(f.mug, 1))
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusEditing, found.Status)
	assert.Equal(t, "Maria da Silva", found.CustomerName)
	assert.Equal(t, 1, found.StoreCode)
	require.Len(t, found.Items, 2)
	assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("114.80")))
	assert.Equal(t, 2, found.GetItemByProduct(f.shirt.ID).Quantity)
	assert.Empty(t, found.GetDomainEvents())
}

func TestGormSalesOrderRepository_ReplacesItems(t *testing.T) {
	db := setupTestDB(t)
	f := seedOrderFixture(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, f)
	require.NoError(t, order.AddProduct(f.shirt, 3))
	require.NoError(t, order.AddProduct(f.mug, 1))
	require.NoError(t, repo.Save(ctx, order))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.RemoveProduct(f.mug.ID))
	require.NoError(t, loaded.RemoveProductQuantity(f.shirt.ID, 1))
	require.NoError(t, repo.Save(ctx, loaded))
	assert.Equal(t, 2, loaded.Version)

	var count int64
	require.NoError(t, db.Table("sales_order_items").Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 2, reloaded.Items[0].Quantity)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.RequireFromString("99.80")))
}

func TestGormSalesOrderRepository_ConcurrentEdit(t *testing.T) {
	db := setupTestDB(t)
	f := seedOrderFixture(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, f)
	require.NoError(t, order.AddProduct(f.shirt, 1))
	require.NoError(t, repo.Save(ctx, order))

	a, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	b, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, repo.Save(ctx, a))

	require.NoError(t, b.AddProduct(f.mug, 1))
	err = repo.Save(ctx, b)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	current, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusClosed, current.Status)
	assert.Len(t, current.Items, 1)
	assert.NotNil(t, current.ClosedAt)
}

func TestGormSalesOrderRepository_FiltersAndCounts(t *testing.T) {
	db := setupTestDB(t)
	f := seedOrderFixture(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	other := newTestCustomer(t, "11144477735", "Joao Pereira")
	require.NoError(t, NewGormCustomerRepository(db).Save(ctx, other))

	editing := newTestOrder(t, f)
	require.NoError(t, repo.Save(ctx, editing))

	closed := newTestOrder(t, f)
	require.NoError(t, closed.AddProduct(f.mug, 1))
	require.NoError(t, closed.Close())
	require.NoError(t, repo.Save(ctx, closed))

	cancelled, err := trade.NewSalesOrder(f.store, other)
	require.NoError(t, err)
	require.NoError(t, cancelled.Cancel("desistiu"))
	require.NoError(t, repo.Save(ctx, cancelled))

	status := trade.OrderStatusClosed
	orders, total, err := repo.FindAll(ctx, trade.SalesOrderFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10},
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, closed.ID, orders[0].ID)
	assert.Len(t, orders[0].Items, 1)

	customerID := other.ID
	_, total, err = repo.FindAll(ctx, trade.SalesOrderFilter{
		Filter:     shared.Filter{Page: 1, PageSize: 10},
		CustomerID: &customerID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = repo.FindAll(ctx, trade.SalesOrderFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10, Search: "maria"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	storeID := f.store.ID
	_, total, err = repo.FindAll(ctx, trade.SalesOrderFilter{
		Filter:  shared.Filter{Page: 1, PageSize: 10},
		StoreID: &storeID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[trade.OrderStatusEditing])
	assert.Equal(t, int64(1), counts[trade.OrderStatusClosed])
	assert.Equal(t, int64(1), counts[trade.OrderStatusCancelled])
}

func TestGormSalesOrderRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	f := seedOrderFixture(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, f)
	require.NoError(t, order.AddProduct(f.shirt, 1))
	require.NoError(t, repo.Save(ctx, order))

	require.NoError(t, repo.Delete(ctx, order.ID))

	_, err := repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var items int64
	require.NoError(t, db.Table("sales_order_items").Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}
