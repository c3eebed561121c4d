// Package mediator dispatches commands and queries to their handlers by
// Go type, running every request through a chain of pipeline behaviors.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrHandlerNotFound is returned by Send when no handler is registered for the request type
var ErrHandlerNotFound = errors.New("mediator: no handler registered")

// Handler handles a single request type
type Handler[C any, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc[C any, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Named lets a request choose the name used in logs, metrics and spans
type Named interface {
	RequestName() string
}

// Request is what behaviors see of the request being dispatched
type Request struct {
	Name    string
	Payload any
}

// Next invokes the rest of the pipeline
type Next func(ctx context.Context) (any, error)

// Behavior wraps request handling, like HTTP middleware
type Behavior func(ctx context.Context, req Request, next Next) (any, error)

type registration struct {
	name   string
	invoke func(ctx context.Context, payload any) (any, error)
}

// Mediator routes requests to handlers
type Mediator struct {
	mu        sync.RWMutex
	handlers  map[reflect.Type]registration
	behaviors []Behavior
}

// New creates a mediator. Behaviors run in the order given, the first one outermost.
func New(behaviors ...Behavior) *Mediator {
	return &Mediator{
		handlers:  make(map[reflect.Type]registration),
		behaviors: behaviors,
	}
}

// Use appends behaviors to the pipeline
func (m *Mediator) Use(behaviors ...Behavior) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.behaviors = append(m.behaviors, behaviors...)
}

// Register binds the handler to requests of type C, replacing any previous one
func Register[C any, R any](m *Mediator, h Handler[C, R]) {
	var zero C
	t := reflect.TypeOf(&zero).Elem()
	name := requestName(zero, t)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[t] = registration{
		name: name,
		invoke: func(ctx context.Context, payload any) (any, error) {
			cmd, ok := payload.(C)
			if !ok {
				return nil, fmt.Errorf("mediator: %s received %T", name, payload)
			}
			return h.Handle(ctx, cmd)
		},
	}
}

// Send dispatches cmd through the pipeline to its handler
func Send[C any, R any](ctx context.Context, m *Mediator, cmd C) (R, error) {
	var zero R
	t := reflect.TypeOf(&cmd).Elem()

	m.mu.RLock()
	reg, ok := m.handlers[t]
	behaviors := m.behaviors
	m.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("%w for %s", ErrHandlerNotFound, t)
	}

	req := Request{Name: requestName(cmd, t), Payload: cmd}
	next := func(ctx context.Context) (any, error) {
		return reg.invoke(ctx, cmd)
	}
	for i := len(behaviors) - 1; i >= 0; i-- {
		b, inner := behaviors[i], next
		next = func(ctx context.Context) (any, error) {
			return b(ctx, req, inner)
		}
	}

	out, err := next(ctx)
	if out == nil {
		return zero, err
	}
	res, ok := out.(R)
	if !ok {
		return zero, fmt.Errorf("mediator: %s returned %T, want %s", req.Name, out, reflect.TypeOf(&zero).Elem())
	}
	return res, err
}

// Has reports whether a handler is registered for C
func Has[C any](m *Mediator) bool {
	var zero C
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handlers[reflect.TypeOf(&zero).Elem()]
	return ok
}

func requestName(v any, t reflect.Type) string {
	if n, ok := v.(Named); ok {
		return n.RequestName()
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
