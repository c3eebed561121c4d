package partner

import (
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
)

const (
	AggregateTypeStore = "Store"

	EventTypeStoreRegistered = "StoreRegistered"
)

// StoreRegisteredEvent is raised when a new store is registered
type StoreRegisteredEvent struct {
	shared.BaseDomainEvent
	StoreID   uuid.UUID `json:"store_id"`
	Code      int       `json:"code"`
	TradeName string    `json:"trade_name"`
}

func NewStoreRegisteredEvent(s *Store) *StoreRegisteredEvent {
	return &StoreRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStoreRegistered, AggregateTypeStore, s.ID),
		StoreID:         s.ID,
		Code:            s.Code,
		TradeName:       s.DisplayName(),
	}
}
