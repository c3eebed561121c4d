package partner

import (
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
)

const (
	AggregateTypeCustomer = "Customer"

	EventTypeCustomerRegistered = "CustomerRegistered"
)

// CustomerRegisteredEvent is raised when a new customer is registered
type CustomerRegisteredEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
}

func NewCustomerRegisteredEvent(c *Customer) *CustomerRegisteredEvent {
	return &CustomerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerRegistered, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Name:            c.Name,
	}
}
