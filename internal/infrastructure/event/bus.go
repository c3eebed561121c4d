package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hexasamples/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish after Stop
var ErrBusStopped = errors.New("event bus stopped")

const busTracerName = "github.com/hexasamples/backend/internal/infrastructure/event"

// InMemoryEventBus hands events to in-process subscribers, one after the
// other, on the caller's goroutine.
//
// Every matching subscriber runs even when an earlier one fails. Publish
// returns the failures joined together, which makes the outbox retry the
// entry; subscribers with side effects are wrapped in an IdempotentHandler
// so the ones that already succeeded skip the redelivery.
//
// Subscribers must not publish on the bus that is calling them.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler

	// lifecycle is read-held for the length of a Publish so Stop can wait
	// for deliveries in flight
	lifecycle sync.RWMutex
	stopped   bool

	tracer trace.Tracer
	logger *zap.Logger
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithBusTracerProvider traces deliveries with tp instead of the global provider
func WithBusTracerProvider(tp trace.TracerProvider) BusOption {
	return func(b *InMemoryEventBus) {
		b.tracer = tp.Tracer(busTracerName)
	}
}

// NewInMemoryEventBus creates a bus with no subscribers
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		byType: make(map[string][]shared.EventHandler),
		tracer: otel.Tracer(busTracerName),
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe routes eventTypes to handler. Without explicit types the
// handler's own EventTypes are used, and a handler that names none
// receives every event. Subscribing the same handler twice to a type is a no-op.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	if len(eventTypes) == 0 {
		if !slices.Contains(b.wildcard, handler) {
			b.wildcard = append(b.wildcard, handler)
		}
	}
	for _, eventType := range eventTypes {
		if !slices.Contains(b.byType[eventType], handler) {
			b.byType[eventType] = append(b.byType[eventType], handler)
		}
	}
	b.mu.Unlock()

	b.logger.Debug("event subscriber registered",
		zap.String("handler", handlerName(handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	same := func(h shared.EventHandler) bool { return h == handler }

	b.mu.Lock()
	b.wildcard = slices.DeleteFunc(b.wildcard, same)
	for eventType, handlers := range b.byType {
		if handlers = slices.DeleteFunc(handlers, same); len(handlers) == 0 {
			delete(b.byType, eventType)
		} else {
			b.byType[eventType] = handlers
		}
	}
	b.mu.Unlock()

	b.logger.Debug("event subscriber removed", zap.String("handler", handlerName(handler)))
}

// subscribers returns the handlers for eventType, type-specific ones first
func (b *InMemoryEventBus) subscribers(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Concat(b.byType[eventType], b.wildcard)
}

// Publish delivers events in order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.lifecycle.RLock()
	defer b.lifecycle.RUnlock()
	if b.stopped {
		return ErrBusStopped
	}

	var errs []error
	for _, event := range events {
		for _, handler := range b.subscribers(event.EventType()) {
			if err := b.deliver(ctx, handler, event); err != nil {
				b.logger.Error("event subscriber failed",
					zap.String("handler", handlerName(handler)),
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// deliver runs one subscriber inside its own span. A panic becomes an error.
func (b *InMemoryEventBus) deliver(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	name := handlerName(handler)
	ctx, span := b.tracer.Start(ctx, "event.handle "+event.EventType(),
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("event.id", event.EventID().String()),
			attribute.String("event.type", event.EventType()),
			attribute.String("event.aggregate_type", event.AggregateType()),
			attribute.String("event.aggregate_id", event.AggregateID().String()),
			attribute.String("event.handler", name),
		),
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return handler.Handle(ctx, event)
}

// Start (re)opens the bus for publishing
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.lifecycle.Lock()
	b.stopped = false
	b.lifecycle.Unlock()
	b.logger.Info("event bus started")
	return nil
}

// Stop refuses new publishes and waits for the ones in flight, or for ctx
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.lifecycle.Lock()
		b.stopped = true
		b.lifecycle.Unlock()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
