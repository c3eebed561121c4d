package trade

import (
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeSalesOrder names the sales order aggregate in events and the outbox
const AggregateTypeSalesOrder = "SalesOrder"

const (
	EventTypeSalesOrderCreated                = "SalesOrderCreated"
	EventTypeSalesOrderItemAdded              = "SalesOrderItemAdded"
	EventTypeSalesOrderItemQuantityRemoved    = "SalesOrderItemQuantityRemoved"
	EventTypeSalesOrderItemRemoved            = "SalesOrderItemRemoved"
	EventTypeSalesOrderStoreCustomerCorrected = "SalesOrderStoreCustomerCorrected"
	EventTypeSalesOrderClosed                 = "SalesOrderClosed"
	EventTypeSalesOrderCancelled              = "SalesOrderCancelled"
	EventTypeSalesOrderProgressUpdated        = "SalesOrderProgressUpdated"
)

// SalesOrderEventTypes lists every event the aggregate raises
func SalesOrderEventTypes() []string {
	return []string{
		EventTypeSalesOrderCreated,
		EventTypeSalesOrderItemAdded,
		EventTypeSalesOrderItemQuantityRemoved,
		EventTypeSalesOrderItemRemoved,
		EventTypeSalesOrderStoreCustomerCorrected,
		EventTypeSalesOrderClosed,
		EventTypeSalesOrderCancelled,
		EventTypeSalesOrderProgressUpdated,
	}
}

// SalesOrderCreatedEvent is raised when a new order is opened
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	StoreID      uuid.UUID `json:"store_id"`
	StoreCode    int       `json:"store_code"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
}

func NewSalesOrderCreatedEvent(o *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, o.ID),
		OrderID:         o.ID,
		StoreID:         o.StoreID,
		StoreCode:       o.StoreCode,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
	}
}

// SalesOrderItemAddedEvent carries the quantity just added and the resulting line
type SalesOrderItemAddedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductCode   string          `json:"product_code"`
	AddedQuantity int             `json:"added_quantity"`
	LineQuantity  int             `json:"line_quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

func NewSalesOrderItemAddedEvent(o *SalesOrder, item *SalesOrderItem, added int) *SalesOrderItemAddedEvent {
	return &SalesOrderItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderItemAdded, AggregateTypeSalesOrder, o.ID),
		OrderID:         o.ID,
		ProductID:       item.ProductID,
		ProductCode:     item.ProductCode,
		AddedQuantity:   added,
		LineQuantity:    item.Quantity,
		UnitPrice:       item.UnitPrice,
		TotalAmount:     o.TotalAmount,
	}
}

type SalesOrderItemQuantityRemovedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID       `json:"order_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	RemovedQuantity int             `json:"removed_quantity"`
	LineQuantity    int             `json:"line_quantity"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

func NewSalesOrderItemQuantityRemovedEvent(o *SalesOrder, item *SalesOrderItem, removed int) *SalesOrderItemQuantityRemovedEvent {
	return &SalesOrderItemQuantityRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderItemQuantityRemoved, AggregateTypeSalesOrder, o.ID),
		OrderID:         o.ID,
		ProductID:       item.ProductID,
		RemovedQuantity: removed,
		LineQuantity:    item.Quantity,
		TotalAmount:     o.TotalAmount,
	}
}

type SalesOrderItemRemovedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewSalesOrderItemRemovedEvent(o *SalesOrder, item *SalesOrderItem) *SalesOrderItemRemovedEvent {
	return &SalesOrderItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderItemRemoved, AggregateTypeSalesOrder, o.ID),
		OrderID:         o.ID,
		ProductID:       item.ProductID,
		ProductCode:     item.ProductCode,
		Quantity:        item.Quantity,
		TotalAmount:     o.TotalAmount,
	}
}

type SalesOrderStoreCustomerCorrectedEvent struct {
	shared.BaseDomainEvent
	OrderID            uuid.UUID       `json:"order_id"`
	PreviousStoreID    uuid.UUID       `json:"previous_store_id"`
	StoreID            uuid.UUID       `json:"store_id"`
	PreviousCustomerID uuid.UUID       `json:"previous_customer_id"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
}

func NewSalesOrderStoreCustomerCorrectedEvent(o *SalesOrder, previousStore, previousCustomer uuid.UUID) *SalesOrderStoreCustomerCorrectedEvent {
	return &SalesOrderStoreCustomerCorrectedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeSalesOrderStoreCustomerCorrected, AggregateTypeSalesOrder, o.ID),
		OrderID:            o.ID,
		PreviousStoreID:    previousStore,
		StoreID:            o.StoreID,
		PreviousCustomerID: previousCustomer,
		CustomerID:         o.CustomerID,
		TotalAmount:        o.TotalAmount,
	}
}

// SalesOrderItemInfo is a line snapshot carried by the closed event
type SalesOrderItemInfo struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// SalesOrderClosedEvent is raised when editing ends. Fulfillment listens to it.
type SalesOrderClosedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID            `json:"order_id"`
	StoreID     uuid.UUID            `json:"store_id"`
	CustomerID  uuid.UUID            `json:"customer_id"`
	Items       []SalesOrderItemInfo `json:"items"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
}

func NewSalesOrderClosedEvent(o *SalesOrder) *SalesOrderClosedEvent {
	items := make([]SalesOrderItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = SalesOrderItemInfo{
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return &SalesOrderClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderClosed, AggregateTypeSalesOrder, o.ID),
		OrderID:         o.ID,
		StoreID:         o.StoreID,
		CustomerID:      o.CustomerID,
		Items:           items,
		TotalAmount:     o.TotalAmount,
	}
}

type SalesOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID   `json:"order_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
	Reason         string      `json:"reason"`
}

func NewSalesOrderCancelledEvent(o *SalesOrder, previous OrderStatus) *SalesOrderCancelledEvent {
	return &SalesOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCancelled, AggregateTypeSalesOrder, o.ID),
		OrderID:         o.ID,
		PreviousStatus:  previous,
		Reason:          o.CancelReason,
	}
}

type SalesOrderProgressUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID   `json:"order_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

func NewSalesOrderProgressUpdatedEvent(o *SalesOrder, from, to OrderStatus) *SalesOrderProgressUpdatedEvent {
	return &SalesOrderProgressUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderProgressUpdated, AggregateTypeSalesOrder, o.ID),
		OrderID:         o.ID,
		From:            from,
		To:              to,
	}
}
