// Package messaging forwards delivered outbox entries to RabbitMQ.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/infrastructure/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// ErrBreakerOpen is returned while the breaker rejects publishes
var ErrBreakerOpen = errors.New("amqp publisher circuit open")

// Channel is the subset of *amqp.Channel the publisher needs
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements event.Forwarder over an AMQP topic exchange.
// Routing keys are "<aggregate type>.<event type>", lower-cased.
type Publisher struct {
	ch       Channel
	exchange string
	cb       *gobreaker.CircuitBreaker
	logger   *zap.Logger
	now      func() time.Time
}

// NewPublisher wraps ch with a circuit breaker built from cfg
func NewPublisher(ch Channel, cfg config.AMQPConfig, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	p := &Publisher{
		ch:       ch,
		exchange: cfg.Exchange,
		logger:   logger,
		now:      time.Now,
	}
	p.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "amqp-publisher",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return p
}

// Forward publishes the entry's JSON payload. Trace context travels in the headers.
func (p *Publisher) Forward(ctx context.Context, entry *shared.OutboxEntry) error {
	headers := amqp.Table{
		"event_type":     entry.EventType,
		"aggregate_type": entry.AggregateType,
		"aggregate_id":   entry.AggregateID.String(),
	}
	otel.GetTextMapPropagator().Inject(ctx, HeadersCarrier(headers))

	msg := amqp.Publishing{
		Headers:      headers,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    entry.EventID.String(),
		Type:         entry.EventType,
		Timestamp:    p.now(),
		Body:         entry.Payload,
	}

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(entry), false, false, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrBreakerOpen, err)
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", entry.EventType, err)
	}
	return nil
}

// State reports the breaker state, for health checks
func (p *Publisher) State() gobreaker.State {
	return p.cb.State()
}

// Close closes the channel
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// RoutingKey derives the topic routing key for an entry
func RoutingKey(entry *shared.OutboxEntry) string {
	return strings.ToLower(entry.AggregateType + "." + entry.EventType)
}

// Connection owns the broker connection and the publishing channel
type Connection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker and declares the durable topic exchange
func Dial(cfg config.AMQPConfig) (*Connection, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	return &Connection{conn: conn, ch: ch}, nil
}

// Channel returns the publishing channel
func (c *Connection) Channel() *amqp.Channel {
	return c.ch
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}
