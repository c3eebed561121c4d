package event

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
)

// testEvent is a bare event for plumbing tests that don't care about payloads
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

func orderCancelled(orderID uuid.UUID, reason string) *trade.SalesOrderCancelledEvent {
	return &trade.SalesOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSalesOrderCancelled, trade.AggregateTypeSalesOrder, orderID),
		OrderID:         orderID,
		PreviousStatus:  trade.OrderStatusEditing,
		Reason:          reason,
	}
}

func orderProgressed(orderID uuid.UUID, from, to trade.OrderStatus) *trade.SalesOrderProgressUpdatedEvent {
	return &trade.SalesOrderProgressUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSalesOrderProgressUpdated, trade.AggregateTypeSalesOrder, orderID),
		OrderID:         orderID,
		From:            from,
		To:              to,
	}
}

// recordingSubscriber keeps every event it is handed and can be told to fail
type recordingSubscriber struct {
	mu         sync.Mutex
	eventTypes []string
	events     []shared.DomainEvent
	err        error
	panicWith  any
}

func newRecordingSubscriber(eventTypes ...string) *recordingSubscriber {
	return &recordingSubscriber{eventTypes: eventTypes}
}

func (s *recordingSubscriber) EventTypes() []string {
	return s.eventTypes
}

func (s *recordingSubscriber) Handle(_ context.Context, event shared.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.err
}

func (s *recordingSubscriber) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *recordingSubscriber) received() []shared.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]shared.DomainEvent(nil), s.events...)
}

func (s *recordingSubscriber) receivedTypes() []string {
	events := s.received()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}
