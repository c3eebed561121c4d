package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T, code int) *partner.Store {
	t.Helper()
	s, err := partner.NewStore(code, "Loja Teste Ltda", "Loja Teste", "12345678000190")
	require.NoError(t, err)
	return s
}

func createTestCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer("12345678909", "Maria Silva")
	require.NoError(t, err)
	return c
}

func createTestProduct(t *testing.T, code string, prices map[uuid.UUID]string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, "Produto "+code)
	require.NoError(t, err)
	for storeID, price := range prices {
		require.NoError(t, p.SetSalePrice(storeID, decimal.RequireFromString(price)))
	}
	return p
}

func createTestOrder(t *testing.T) (*SalesOrder, *partner.Store) {
	t.Helper()
	store := createTestStore(t, 1)
	order, err := NewSalesOrder(store, createTestCustomer(t))
	require.NoError(t, err)
	return order, store
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func lastEventType(o *SalesOrder) string {
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return ""
	}
	return events[len(events)-1].EventType()
}

// ==================== Creation ====================

func TestNewSalesOrder(t *testing.T) {
	t.Run("starts editing", func(t *testing.T) {
		store := createTestStore(t, 7)
		customer := createTestCustomer(t)

		order, err := NewSalesOrder(store, customer)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, order.ID)
		assert.Equal(t, OrderStatusEditing, order.Status)
		assert.Equal(t, store.ID, order.StoreID)
		assert.Equal(t, 7, order.StoreCode)
		assert.Equal(t, customer.ID, order.CustomerID)
		assert.Equal(t, "Maria Silva", order.CustomerName)
		assert.False(t, order.CreatedAt.IsZero())
		assert.Empty(t, order.Items)
		assert.True(t, order.TotalAmount.IsZero())
		assert.Equal(t, 1, order.GetVersion())
		assert.Equal(t, EventTypeSalesOrderCreated, lastEventType(order))
	})

	t.Run("requires store", func(t *testing.T) {
		_, err := NewSalesOrder(nil, createTestCustomer(t))
		assertDomainCode(t, err, "INVALID_STORE")
	})

	t.Run("requires customer", func(t *testing.T) {
		_, err := NewSalesOrder(createTestStore(t, 1), nil)
		assertDomainCode(t, err, "INVALID_CUSTOMER")
	})

	t.Run("keeps supplied id", func(t *testing.T) {
		id := uuid.New()
		order, err := NewSalesOrderWithID(id, createTestStore(t, 1), createTestCustomer(t))
		require.NoError(t, err)
		assert.Equal(t, id, order.ID)
	})
}

// ==================== Items ====================

func TestSalesOrder_AddProduct(t *testing.T) {
	t.Run("adds a line with the store price", func(t *testing.T) {
		order, store := createTestOrder(t)
		product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "10.50"})

		require.NoError(t, order.AddProduct(product, 2))

		require.Len(t, order.Items, 1)
		item := order.Items[0]
		assert.Equal(t, product.ID, item.ProductID)
		assert.Equal(t, "A", item.ProductCode)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, "10.5", item.UnitPrice.String())
		assert.Equal(t, "21", item.Amount.String())
		assert.Equal(t, "21", order.TotalAmount.String())
		assert.Equal(t, EventTypeSalesOrderItemAdded, lastEventType(order))
	})

	t.Run("adding the same product twice accumulates quantity", func(t *testing.T) {
		order, store := createTestOrder(t)
		product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "3"})

		require.NoError(t, order.AddProduct(product, 1))
		require.NoError(t, order.AddProduct(product, 4))

		require.Len(t, order.Items, 1)
		assert.Equal(t, 5, order.Items[0].Quantity)
		assert.Equal(t, "15", order.TotalAmount.String())
	})

	t.Run("falls back to the first registered price", func(t *testing.T) {
		order, _ := createTestOrder(t)
		product := createTestProduct(t, "A", map[uuid.UUID]string{uuid.New(): "8"})

		require.NoError(t, order.AddProduct(product, 1))
		assert.Equal(t, "8", order.Items[0].UnitPrice.String())
	})

	t.Run("refreshes price when accumulating", func(t *testing.T) {
		order, store := createTestOrder(t)
		product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "3"})
		require.NoError(t, order.AddProduct(product, 1))

		require.NoError(t, product.SetSalePrice(store.ID, decimal.NewFromInt(4)))
		require.NoError(t, order.AddProduct(product, 1))

		assert.Equal(t, "4", order.Items[0].UnitPrice.String())
		assert.Equal(t, "8", order.TotalAmount.String())
	})

	t.Run("rejects product without price", func(t *testing.T) {
		order, _ := createTestOrder(t)
		product := createTestProduct(t, "A", nil)

		assertDomainCode(t, order.AddProduct(product, 1), "PRODUCT_WITHOUT_PRICE")
		assert.Empty(t, order.Items)
	})

	t.Run("rejects zero price", func(t *testing.T) {
		order, store := createTestOrder(t)
		product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "0"})

		assertDomainCode(t, order.AddProduct(product, 1), "PRODUCT_WITHOUT_PRICE")
	})

	quantities := []int{0, -1}
	for _, q := range quantities {
		t.Run("rejects non positive quantity", func(t *testing.T) {
			order, store := createTestOrder(t)
			product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "1"})
			assertDomainCode(t, order.AddProduct(product, q), "INVALID_QUANTITY")
		})
	}

	t.Run("rejects nil product", func(t *testing.T) {
		order, _ := createTestOrder(t)
		assertDomainCode(t, order.AddProduct(nil, 1), "INVALID_PRODUCT")
	})

	t.Run("rejects when not editing", func(t *testing.T) {
		order, store := createTestOrder(t)
		product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "1"})
		require.NoError(t, order.AddProduct(product, 1))
		require.NoError(t, order.Close())

		assertDomainCode(t, order.AddProduct(product, 1), "INVALID_STATE")
	})
}

func TestSalesOrder_RemoveProductQuantity(t *testing.T) {
	setup := func(t *testing.T, qty int) (*SalesOrder, *catalog.Product) {
		order, store := createTestOrder(t)
		product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "2"})
		require.NoError(t, order.AddProduct(product, qty))
		return order, product
	}

	t.Run("decreases quantity", func(t *testing.T) {
		order, product := setup(t, 5)

		require.NoError(t, order.RemoveProductQuantity(product.ID, 2))

		assert.Equal(t, 3, order.Items[0].Quantity)
		assert.Equal(t, "6", order.TotalAmount.String())
		assert.Equal(t, EventTypeSalesOrderItemQuantityRemoved, lastEventType(order))
	})

	t.Run("removing all quantity removes the line", func(t *testing.T) {
		order, product := setup(t, 3)

		require.NoError(t, order.RemoveProductQuantity(product.ID, 3))

		assert.Empty(t, order.Items)
		assert.True(t, order.TotalAmount.IsZero())
		assert.Equal(t, EventTypeSalesOrderItemRemoved, lastEventType(order))
	})

	t.Run("removing more than the quantity removes the line", func(t *testing.T) {
		order, product := setup(t, 3)
		require.NoError(t, order.RemoveProductQuantity(product.ID, 10))
		assert.Empty(t, order.Items)
	})

	t.Run("unknown product", func(t *testing.T) {
		order, _ := setup(t, 1)
		assertDomainCode(t, order.RemoveProductQuantity(uuid.New(), 1), "ITEM_NOT_FOUND")
	})

	t.Run("non positive quantity", func(t *testing.T) {
		order, product := setup(t, 1)
		assertDomainCode(t, order.RemoveProductQuantity(product.ID, 0), "INVALID_QUANTITY")
	})
}

func TestSalesOrder_RemoveProduct(t *testing.T) {
	order, store := createTestOrder(t)
	a := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "2"})
	b := createTestProduct(t, "B", map[uuid.UUID]string{store.ID: "5"})
	require.NoError(t, order.AddProduct(a, 1))
	require.NoError(t, order.AddProduct(b, 2))

	require.NoError(t, order.RemoveProduct(a.ID))

	require.Len(t, order.Items, 1)
	assert.Equal(t, b.ID, order.Items[0].ProductID)
	assert.Equal(t, "10", order.TotalAmount.String())

	assertDomainCode(t, order.RemoveProduct(a.ID), "ITEM_NOT_FOUND")
}

func TestSalesOrder_CorrectStoreAndCustomer(t *testing.T) {
	t.Run("reprices lines for the new store", func(t *testing.T) {
		order, oldStore := createTestOrder(t)
		newStore := createTestStore(t, 2)
		product := createTestProduct(t, "A", map[uuid.UUID]string{oldStore.ID: "2", newStore.ID: "3"})
		require.NoError(t, order.AddProduct(product, 2))
		newCustomer, err := partner.NewCustomer("98765432100", "João Souza")
		require.NoError(t, err)

		err = order.CorrectStoreAndCustomer(newStore, newCustomer, map[uuid.UUID]*catalog.Product{product.ID: product})
		require.NoError(t, err)

		assert.Equal(t, newStore.ID, order.StoreID)
		assert.Equal(t, 2, order.StoreCode)
		assert.Equal(t, newCustomer.ID, order.CustomerID)
		assert.Equal(t, "João Souza", order.CustomerName)
		assert.Equal(t, "3", order.Items[0].UnitPrice.String())
		assert.Equal(t, "6", order.TotalAmount.String())
		assert.Equal(t, EventTypeSalesOrderStoreCustomerCorrected, lastEventType(order))
	})

	t.Run("missing product leaves order untouched", func(t *testing.T) {
		order, store := createTestOrder(t)
		product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "2"})
		require.NoError(t, order.AddProduct(product, 1))
		newStore := createTestStore(t, 2)

		err := order.CorrectStoreAndCustomer(newStore, createTestCustomer(t), nil)

		assertDomainCode(t, err, "PRODUCT_NOT_FOUND")
		assert.Equal(t, store.ID, order.StoreID)
	})

	t.Run("requires store and customer", func(t *testing.T) {
		order, _ := createTestOrder(t)
		assertDomainCode(t, order.CorrectStoreAndCustomer(nil, createTestCustomer(t), nil), "INVALID_STORE")
		assertDomainCode(t, order.CorrectStoreAndCustomer(createTestStore(t, 1), nil, nil), "INVALID_CUSTOMER")
	})

	t.Run("only while editing", func(t *testing.T) {
		order, _ := createTestOrder(t)
		require.NoError(t, order.Cancel("customer gave up"))
		assertDomainCode(t, order.CorrectStoreAndCustomer(createTestStore(t, 1), createTestCustomer(t), nil), "INVALID_STATE")
	})
}

// ==================== Lifecycle ====================

func orderInStatus(t *testing.T, status OrderStatus) *SalesOrder {
	t.Helper()
	order, store := createTestOrder(t)
	product := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "1"})
	require.NoError(t, order.AddProduct(product, 1))
	order.Status = status
	order.ClearDomainEvents()
	return order
}

func TestSalesOrder_Close(t *testing.T) {
	t.Run("closes an editing order", func(t *testing.T) {
		order := orderInStatus(t, OrderStatusEditing)

		require.NoError(t, order.Close())

		assert.Equal(t, OrderStatusClosed, order.Status)
		assert.NotNil(t, order.ClosedAt)
		require.Len(t, order.GetDomainEvents(), 1)
		closed, ok := order.GetDomainEvents()[0].(*SalesOrderClosedEvent)
		require.True(t, ok)
		assert.Len(t, closed.Items, 1)
	})

	t.Run("empty order cannot close", func(t *testing.T) {
		order, _ := createTestOrder(t)
		assertDomainCode(t, order.Close(), "EMPTY_ORDER")
	})

	for _, status := range AllOrderStatuses() {
		if status == OrderStatusEditing {
			continue
		}
		t.Run("rejects "+status.String(), func(t *testing.T) {
			order := orderInStatus(t, status)
			assertDomainCode(t, order.Close(), "INVALID_STATE")
		})
	}
}

func TestSalesOrder_Cancel(t *testing.T) {
	allowed := map[OrderStatus]bool{
		OrderStatusEditing:    true,
		OrderStatusClosed:     true,
		OrderStatusReserved:   true,
		OrderStatusPaid:       true,
		OrderStatusReturned:   true,
		OrderStatusDispatched: false,
		OrderStatusDelivered:  false,
		OrderStatusFinalized:  false,
		OrderStatusCancelled:  false,
	}
	for status, ok := range allowed {
		t.Run(status.String(), func(t *testing.T) {
			order := orderInStatus(t, status)
			err := order.Cancel("reason")
			if !ok {
				assertDomainCode(t, err, "INVALID_STATE")
				assert.Equal(t, status, order.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OrderStatusCancelled, order.Status)
			assert.NotNil(t, order.CancelledAt)
			assert.Equal(t, "reason", order.CancelReason)
			evt, isCancel := order.GetDomainEvents()[0].(*SalesOrderCancelledEvent)
			require.True(t, isCancel)
			assert.Equal(t, status, evt.PreviousStatus)
		})
	}
}

func TestSalesOrder_UpdateProgress(t *testing.T) {
	t.Run("moves a closed order forward", func(t *testing.T) {
		order := orderInStatus(t, OrderStatusClosed)

		require.NoError(t, order.UpdateProgress(OrderStatusReserved))
		require.NoError(t, order.UpdateProgress(OrderStatusPaid))
		require.NoError(t, order.UpdateProgress(OrderStatusDispatched))
		require.NoError(t, order.UpdateProgress(OrderStatusDelivered))
		require.NoError(t, order.UpdateProgress(OrderStatusFinalized))

		assert.Equal(t, OrderStatusFinalized, order.Status)
		assert.Len(t, order.GetDomainEvents(), 5)
	})

	blockedFrom := []OrderStatus{OrderStatusEditing, OrderStatusCancelled, OrderStatusFinalized}
	for _, status := range blockedFrom {
		t.Run("blocked while "+status.String(), func(t *testing.T) {
			order := orderInStatus(t, status)
			assertDomainCode(t, order.UpdateProgress(OrderStatusPaid), "INVALID_STATE")
			assert.Equal(t, status, order.Status)
		})
	}

	forbiddenTargets := []OrderStatus{OrderStatusEditing, OrderStatusCancelled, OrderStatusClosed}
	for _, target := range forbiddenTargets {
		t.Run("cannot target "+target.String(), func(t *testing.T) {
			order := orderInStatus(t, OrderStatusPaid)
			assertDomainCode(t, order.UpdateProgress(target), "INVALID_STATE")
		})
	}

	t.Run("rejects unknown status", func(t *testing.T) {
		order := orderInStatus(t, OrderStatusClosed)
		assertDomainCode(t, order.UpdateProgress(OrderStatus("LOST")), "INVALID_STATUS")
	})

	t.Run("rejects same status", func(t *testing.T) {
		order := orderInStatus(t, OrderStatusPaid)
		assertDomainCode(t, order.UpdateProgress(OrderStatusPaid), "INVALID_STATE")
	})

	t.Run("records from and to", func(t *testing.T) {
		order := orderInStatus(t, OrderStatusDelivered)
		require.NoError(t, order.UpdateProgress(OrderStatusReturned))
		evt := order.GetDomainEvents()[0].(*SalesOrderProgressUpdatedEvent)
		assert.Equal(t, OrderStatusDelivered, evt.From)
		assert.Equal(t, OrderStatusReturned, evt.To)
	})
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus(" paid ")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusPaid, s)

	_, ok = ParseOrderStatus("shipped")
	assert.False(t, ok)
}

func TestSalesOrder_Helpers(t *testing.T) {
	order, store := createTestOrder(t)
	a := createTestProduct(t, "A", map[uuid.UUID]string{store.ID: "2.5"})
	b := createTestProduct(t, "B", map[uuid.UUID]string{store.ID: "1"})
	require.NoError(t, order.AddProduct(a, 2))
	require.NoError(t, order.AddProduct(b, 3))

	assert.Equal(t, 2, order.ItemCount())
	assert.Equal(t, 5, order.TotalQuantity())
	assert.Equal(t, "BRL 8.00", order.TotalMoney().String())
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, order.ProductIDs())
	assert.True(t, order.IsEditing())
	assert.False(t, order.IsTerminal())
	assert.Nil(t, order.GetItemByProduct(uuid.New()))
}
