package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcomes reported to a ProcessorObserver
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
	OutcomeDead   = "dead"
)

// Forwarder ships a locally delivered entry to an external broker
type Forwarder interface {
	Forward(ctx context.Context, entry *shared.OutboxEntry) error
}

type ProcessorObserver interface {
	OutboxEntryProcessed(eventType, outcome string)
}

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// Workers bounds how many entries of a batch are delivered at once
	Workers int
	// StuckAfter is how long an entry may sit in PROCESSING before the
	// janitor hands it back to the queue. Zero disables the reset.
	StuckAfter       time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		Workers:          4,
		StuckAfter:       5 * time.Minute,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// OutboxProcessor drains the outbox in the background.
//
// A claimed entry goes through three stages: decode, publish on the local
// bus, forward to the broker when one is configured. The first stage to
// fail schedules a retry with backoff; an entry that runs out of attempts
// moves to DEAD and waits for an operator.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventBus
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger
	forwarder  Forwarder
	observer   ProcessorObserver

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type ProcessorOption func(*OutboxProcessor)

func WithForwarder(f Forwarder) ProcessorOption {
	return func(p *OutboxProcessor) { p.forwarder = f }
}

func WithObserver(o ProcessorObserver) ProcessorOption {
	return func(p *OutboxProcessor) { p.observer = o }
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	eventBus shared.EventBus,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
	opts ...ProcessorOption,
) *OutboxProcessor {
	defaults := DefaultOutboxProcessorConfig()
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.BatchSize < 1 {
		config.BatchSize = defaults.BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}

	p := &OutboxProcessor{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     config,
		logger:     logger.Named("outbox"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the polling loop and, when enabled, the janitor
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Go(func() { every(ctx, p.config.PollInterval, p.processBatch) })
	if p.config.CleanupEnabled {
		p.wg.Go(func() { every(ctx, p.config.CleanupInterval, p.cleanup) })
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.Workers),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Bool("forwarding", p.forwarder != nil),
	)
	return nil
}

// Stop cancels the loops and waits for the batch in flight, or for ctx
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// every runs fn on each tick until ctx is done
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// processBatch delivers new entries first, then failed ones whose backoff elapsed
func (p *OutboxProcessor) processBatch(ctx context.Context) {
	sources := []struct {
		name string
		find func() ([]*shared.OutboxEntry, error)
	}{
		{"pending", func() ([]*shared.OutboxEntry, error) { return p.repo.FindPending(ctx, p.config.BatchSize) }},
		{"retryable", func() ([]*shared.OutboxEntry, error) {
			return p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
		}},
	}

	for _, src := range sources {
		entries, err := src.find()
		if err != nil {
			p.logger.Error("failed to load outbox entries", zap.String("source", src.name), zap.Error(err))
			return
		}
		if len(entries) > 0 {
			p.dispatch(ctx, entries)
		}
	}
}

// dispatch claims the entries and delivers those it won. Another replica
// may have claimed some of them first.
func (p *OutboxProcessor) dispatch(ctx context.Context, entries []*shared.OutboxEntry) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("failed to claim outbox entries", zap.Int("count", len(ids)), zap.Error(err))
		return
	}

	var g errgroup.Group
	g.SetLimit(p.config.Workers)
	for _, entry := range claimed {
		g.Go(func() error {
			p.settle(ctx, entry, p.deliver(ctx, entry))
			return nil
		})
	}
	_ = g.Wait()
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) error {
	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := p.eventBus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if p.forwarder != nil {
		if err := p.forwarder.Forward(ctx, entry); err != nil {
			return fmt.Errorf("forward: %w", err)
		}
	}
	return nil
}

// settle records the delivery result on the entry and persists it
func (p *OutboxProcessor) settle(ctx context.Context, entry *shared.OutboxEntry, deliveryErr error) {
	log := p.logger.With(
		zap.Stringer("event_id", entry.EventID),
		zap.String("event_type", entry.EventType),
	)

	outcome := OutcomeSent
	if deliveryErr == nil {
		entry.MarkSent()
	} else {
		entry.MarkFailed(deliveryErr.Error())
		outcome = OutcomeFailed
		log.Error("outbox delivery failed", zap.Int("attempt", entry.RetryCount), zap.Error(deliveryErr))
		if entry.IsDead() {
			outcome = OutcomeDead
			log.Warn("event moved to dead letter queue",
				zap.String("aggregate_type", entry.AggregateType),
				zap.Stringer("aggregate_id", entry.AggregateID),
				zap.String("last_error", entry.LastError),
			)
		}
	}

	if err := p.repo.Update(ctx, entry); err != nil {
		// left in PROCESSING; the janitor requeues it after StuckAfter
		log.Error("failed to record delivery outcome", zap.String("outcome", outcome), zap.Error(err))
		return
	}
	if p.observer != nil {
		p.observer.OutboxEntryProcessed(entry.EventType, outcome)
	}
	if outcome == OutcomeSent {
		log.Debug("event delivered")
	}
}

// cleanup requeues stuck entries and purges sent ones past retention
func (p *OutboxProcessor) cleanup(ctx context.Context) {
	if p.config.StuckAfter > 0 {
		reset, err := p.repo.ResetStuck(ctx, time.Now().Add(-p.config.StuckAfter))
		switch {
		case err != nil:
			p.logger.Error("failed to reset stuck entries", zap.Error(err))
		case reset > 0:
			p.logger.Warn("requeued stuck outbox entries", zap.Int64("count", reset))
		}
	}

	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	switch {
	case err != nil:
		p.logger.Error("failed to purge sent entries", zap.Error(err))
	case deleted > 0:
		p.logger.Info("purged sent outbox entries", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}
