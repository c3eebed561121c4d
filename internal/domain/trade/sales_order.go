package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SalesOrderItem is one product line of a sales order. UnitPrice is a
// snapshot of the product's sale price for the order's store.
type SalesOrderItem struct {
	ID                 uuid.UUID
	OrderID            uuid.UUID
	ProductID          uuid.UUID
	ProductCode        string
	ProductDescription string
	Quantity           int
	UnitPrice          decimal.Decimal
	Amount             decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func newSalesOrderItem(orderID uuid.UUID, product *catalog.Product, quantity int, unitPrice decimal.Decimal) *SalesOrderItem {
	now := time.Now()
	item := &SalesOrderItem{
		ID:                 uuid.New(),
		OrderID:            orderID,
		ProductID:          product.ID,
		ProductCode:        product.Code,
		ProductDescription: product.Description,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	item.recalculate()
	return item
}

// AddQuantity increases the line quantity
func (i *SalesOrderItem) AddQuantity(quantity int) {
	i.Quantity += quantity
	i.recalculate()
}

// RemoveQuantity decreases the line quantity, never below zero
func (i *SalesOrderItem) RemoveQuantity(quantity int) {
	i.Quantity -= quantity
	if i.Quantity < 0 {
		i.Quantity = 0
	}
	i.recalculate()
}

func (i *SalesOrderItem) setUnitPrice(price decimal.Decimal) {
	i.UnitPrice = price
	i.recalculate()
}

func (i *SalesOrderItem) recalculate() {
	i.Amount = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	i.UpdatedAt = time.Now()
}

// AmountMoney returns the line amount in reais
func (i *SalesOrderItem) AmountMoney() valueobject.Money {
	return valueobject.BRLAmount(i.Amount)
}

// SalesOrder is the aggregate root for a customer's purchase at a store.
//
// Lines are editable only while the order is EDITING. Closing hands the
// order over to fulfillment, which then moves it forward with progress
// updates until it is FINALIZED.
type SalesOrder struct {
	shared.BaseAggregateRoot
	StoreID      uuid.UUID
	StoreCode    int
	CustomerID   uuid.UUID
	CustomerName string
	Status       OrderStatus
	Items        []SalesOrderItem
	TotalAmount  decimal.Decimal
	ClosedAt     *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewSalesOrder opens an order in EDITING for the customer at the store
func NewSalesOrder(store *partner.Store, customer *partner.Customer) (*SalesOrder, error) {
	return NewSalesOrderWithID(uuid.Nil, store, customer)
}

// NewSalesOrderWithID is NewSalesOrder with a caller supplied ID (uuid.Nil generates one)
func NewSalesOrderWithID(id uuid.UUID, store *partner.Store, customer *partner.Customer) (*SalesOrder, error) {
	if store == nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store is required")
	}
	if customer == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}

	order := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		StoreID:           store.ID,
		StoreCode:         store.Code,
		CustomerID:        customer.ID,
		CustomerName:      customer.Name,
		Status:            OrderStatusEditing,
		Items:             make([]SalesOrderItem, 0),
		TotalAmount:       decimal.Zero,
	}

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))

	return order, nil
}

// AddProduct adds quantity units of the product. A product already on the
// order accumulates quantity on its existing line. The unit price is taken
// from the product for the order's store and must be non-zero.
func (o *SalesOrder) AddProduct(product *catalog.Product, quantity int) error {
	if err := o.ensureEditable("add products to"); err != nil {
		return err
	}
	if product == nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}

	price := product.SalePriceFor(o.StoreID)
	if !price.IsPositive() {
		return shared.NewDomainError("PRODUCT_WITHOUT_PRICE", fmt.Sprintf("Product %s has no sale price", product.Code))
	}

	item := o.GetItemByProduct(product.ID)
	if item != nil {
		item.setUnitPrice(price)
		item.AddQuantity(quantity)
	} else {
		item = newSalesOrderItem(o.ID, product, quantity, price)
		o.Items = append(o.Items, *item)
		item = &o.Items[len(o.Items)-1]
	}

	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewSalesOrderItemAddedEvent(o, item, quantity))

	return nil
}

// RemoveProductQuantity takes quantity units off the product's line.
// The line disappears when nothing is left.
func (o *SalesOrder) RemoveProductQuantity(productID uuid.UUID, quantity int) error {
	if err := o.ensureEditable("remove products from"); err != nil {
		return err
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	item := o.GetItemByProduct(productID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Product is not on the order")
	}

	if quantity >= item.Quantity {
		removed := *item
		o.removeLine(productID)
		o.AddDomainEvent(NewSalesOrderItemRemovedEvent(o, &removed))
		return nil
	}

	item.RemoveQuantity(quantity)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewSalesOrderItemQuantityRemovedEvent(o, item, quantity))

	return nil
}

// RemoveProduct drops the product's line entirely
func (o *SalesOrder) RemoveProduct(productID uuid.UUID) error {
	if err := o.ensureEditable("remove products from"); err != nil {
		return err
	}
	item := o.GetItemByProduct(productID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Product is not on the order")
	}

	removed := *item
	o.removeLine(productID)
	o.AddDomainEvent(NewSalesOrderItemRemovedEvent(o, &removed))

	return nil
}

// CorrectStoreAndCustomer fixes the store and customer of an order still
// being edited. Unit prices are refreshed for the new store, so every
// product must still have a price there.
func (o *SalesOrder) CorrectStoreAndCustomer(store *partner.Store, customer *partner.Customer, products map[uuid.UUID]*catalog.Product) error {
	if err := o.ensureEditable("correct store and customer of"); err != nil {
		return err
	}
	if store == nil {
		return shared.NewDomainError("INVALID_STORE", "Store is required")
	}
	if customer == nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}

	prices := make(map[uuid.UUID]decimal.Decimal, len(o.Items))
	for _, item := range o.Items {
		product, ok := products[item.ProductID]
		if !ok || product == nil {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", item.ProductCode))
		}
		price := product.SalePriceFor(store.ID)
		if !price.IsPositive() {
			return shared.NewDomainError("PRODUCT_WITHOUT_PRICE", fmt.Sprintf("Product %s has no sale price", product.Code))
		}
		prices[item.ProductID] = price
	}

	previousStore := o.StoreID
	previousCustomer := o.CustomerID

	o.StoreID = store.ID
	o.StoreCode = store.Code
	o.CustomerID = customer.ID
	o.CustomerName = customer.Name
	for i := range o.Items {
		o.Items[i].setUnitPrice(prices[o.Items[i].ProductID])
	}
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewSalesOrderStoreCustomerCorrectedEvent(o, previousStore, previousCustomer))

	return nil
}

// Close finishes editing and hands the order to fulfillment
func (o *SalesOrder) Close() error {
	if o.Status != OrderStatusEditing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot close an order without items")
	}

	now := time.Now()
	o.Status = OrderStatusClosed
	o.ClosedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewSalesOrderClosedEvent(o))

	return nil
}

// Cancel cancels the order unless it has already been dispatched,
// delivered or finalized
func (o *SalesOrder) Cancel(reason string) error {
	if !o.Status.CanBeCancelled() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	previous := o.Status
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewSalesOrderCancelledEvent(o, previous))

	return nil
}

// UpdateProgress records a fulfillment step such as RESERVED or PAID
func (o *SalesOrder) UpdateProgress(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.AcceptsProgressUpdate() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update progress of order in %s status", o.Status))
	}
	if !target.IsProgressTarget() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Progress cannot move an order to %s", target))
	}
	if target == o.Status {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Order is already %s", target))
	}

	previous := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewSalesOrderProgressUpdatedEvent(o, previous, target))

	return nil
}

func (o *SalesOrder) ensureEditable(action string) error {
	if !o.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot %s order in %s status", action, o.Status))
	}
	return nil
}

func (o *SalesOrder) removeLine(productID uuid.UUID) {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			break
		}
	}
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
}

func (o *SalesOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

// TotalMoney returns the order total in reais
func (o *SalesOrder) TotalMoney() valueobject.Money {
	return valueobject.BRLAmount(o.TotalAmount)
}

func (o *SalesOrder) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity sums the quantity of every line
func (o *SalesOrder) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// GetItemByProduct returns the line for the product, or nil
func (o *SalesOrder) GetItemByProduct(productID uuid.UUID) *SalesOrderItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

// ProductIDs lists the products on the order
func (o *SalesOrder) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.ProductID
	}
	return ids
}

func (o *SalesOrder) IsEditing() bool {
	return o.Status == OrderStatusEditing
}

func (o *SalesOrder) IsTerminal() bool {
	return o.Status.IsTerminal()
}
