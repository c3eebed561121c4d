package trade

import "strings"

// OrderStatus is the lifecycle state of a sales order
type OrderStatus string

const (
	OrderStatusEditing    OrderStatus = "EDITING"
	OrderStatusClosed     OrderStatus = "CLOSED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReserved   OrderStatus = "RESERVED"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusDispatched OrderStatus = "DISPATCHED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusReturned   OrderStatus = "RETURNED"
	OrderStatusFinalized  OrderStatus = "FINALIZED"
)

// AllOrderStatuses lists every status in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusEditing,
		OrderStatusClosed,
		OrderStatusCancelled,
		OrderStatusReserved,
		OrderStatusPaid,
		OrderStatusDispatched,
		OrderStatusDelivered,
		OrderStatusReturned,
		OrderStatusFinalized,
	}
}

// ParseOrderStatus accepts any letter case
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	return status, status.IsValid()
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusEditing, OrderStatusClosed, OrderStatusCancelled,
		OrderStatusReserved, OrderStatusPaid, OrderStatusDispatched,
		OrderStatusDelivered, OrderStatusReturned, OrderStatusFinalized:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// IsEditable reports whether items, store or customer may change
func (s OrderStatus) IsEditable() bool {
	return s == OrderStatusEditing
}

// CanBeCancelled is false once goods have left or the order is done
func (s OrderStatus) CanBeCancelled() bool {
	switch s {
	case OrderStatusDispatched, OrderStatusDelivered, OrderStatusFinalized, OrderStatusCancelled:
		return false
	}
	return s.IsValid()
}

// AcceptsProgressUpdate reports whether fulfillment may move the order on
func (s OrderStatus) AcceptsProgressUpdate() bool {
	switch s {
	case OrderStatusEditing, OrderStatusCancelled, OrderStatusFinalized:
		return false
	}
	return s.IsValid()
}

// IsProgressTarget reports whether a progress update may set this status.
// Editing, closing and cancelling have their own operations.
func (s OrderStatus) IsProgressTarget() bool {
	switch s {
	case OrderStatusEditing, OrderStatusCancelled, OrderStatusClosed:
		return false
	}
	return s.IsValid()
}

// IsTerminal reports whether no further change is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusFinalized
}
