package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockOutboxRepository is a mock implementation for testing
type mockOutboxRepository struct {
	mu               sync.Mutex
	entries          map[uuid.UUID]*shared.OutboxEntry
	findPendingFn    func(ctx context.Context, limit int) ([]*shared.OutboxEntry, error)
	findRetryableFn  func(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error)
	markProcessingFn func(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error)
	updateFn         func(ctx context.Context, entry *shared.OutboxEntry) error
	deleteFn         func(ctx context.Context, before time.Time) (int64, error)
	resetStuckCalls  int
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{
		entries: make(map[uuid.UUID]*shared.OutboxEntry),
	}
}

func (r *mockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	if r.findPendingFn != nil {
		return r.findPendingFn(ctx, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *mockOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	if r.findRetryableFn != nil {
		return r.findRetryableFn(ctx, before, limit)
	}
	return nil, nil
}

func (r *mockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if r.markProcessingFn != nil {
		return r.markProcessingFn(ctx, ids)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			e.Status = shared.OutboxStatusProcessing
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *mockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	if r.updateFn != nil {
		return r.updateFn(ctx, entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *mockOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	if r.deleteFn != nil {
		return r.deleteFn(ctx, before)
	}
	return 0, nil
}

func (r *mockOutboxRepository) ResetStuck(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetStuckCalls++
	var n int64
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusProcessing && e.UpdatedAt.Before(before) {
			e.Status = shared.OutboxStatusPending
			n++
		}
	}
	return n, nil
}

func (r *mockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

func (r *mockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *mockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func TestOutboxProcessor_ProcessesPendingEntries(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	RegisterEvent[testEvent](serializer, "TestEvent")

	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)

	handler := newRecordingSubscriber("TestEvent")
	eventBus.Subscribe(handler, "TestEvent")

	// Create pending entry
	event := newTestEvent("TestEvent")
	payload, _ := serializer.Serialize(event)
	entry := shared.NewOutboxEntry(event, payload)
	repo.Save(context.Background(), entry)

	config := OutboxProcessorConfig{
		BatchSize:    100,
		PollInterval: 50 * time.Millisecond,
	}
	processor := NewOutboxProcessor(repo, eventBus, serializer, config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	err := processor.Start(ctx)
	require.NoError(t, err)

	// Wait for processing
	time.Sleep(200 * time.Millisecond)

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	err = processor.Stop(stopCtx)
	require.NoError(t, err)

	// Verify event was processed
	assert.Len(t, handler.received(), 1)

	// Verify entry was marked as sent
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, shared.OutboxStatusSent, repo.entries[entry.ID].Status)
}

func TestOutboxProcessor_StopGracefully(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)

	config := DefaultOutboxProcessorConfig()
	processor := NewOutboxProcessor(repo, eventBus, serializer, config, logger)

	ctx := context.Background()
	err := processor.Start(ctx)
	require.NoError(t, err)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = processor.Stop(stopCtx)
	require.NoError(t, err)
}

func TestOutboxProcessor_HandleDeserializationError(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	// Note: NOT registering the event type to cause deserialization error

	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)

	// Create entry with unregistered event type
	event := newTestEvent("UnregisteredEvent")
	payload := []byte(`{"type": "UnregisteredEvent"}`)
	entry := shared.NewOutboxEntry(event, payload)
	entry.EventType = "UnregisteredEvent"
	repo.Save(context.Background(), entry)

	config := OutboxProcessorConfig{
		BatchSize:    100,
		PollInterval: 50 * time.Millisecond,
	}
	processor := NewOutboxProcessor(repo, eventBus, serializer, config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	err := processor.Start(ctx)
	require.NoError(t, err)

	// Wait for processing
	time.Sleep(200 * time.Millisecond)

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	processor.Stop(stopCtx)

	// Verify entry was marked as failed
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, shared.OutboxStatusFailed, repo.entries[entry.ID].Status)
	assert.Contains(t, repo.entries[entry.ID].LastError, "unknown event type")
}

func TestDefaultOutboxProcessorConfig(t *testing.T) {
	config := DefaultOutboxProcessorConfig()

	assert.Equal(t, 100, config.BatchSize)
	assert.Equal(t, 5*time.Second, config.PollInterval)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, 5*time.Minute, config.StuckAfter)
	assert.True(t, config.CleanupEnabled)
	assert.Equal(t, 7*24*time.Hour, config.CleanupRetention)
	assert.Equal(t, 1*time.Hour, config.CleanupInterval)
}

type stubForwarder struct {
	mu        sync.Mutex
	err       error
	forwarded []uuid.UUID
}

func (f *stubForwarder) Forward(ctx context.Context, entry *shared.OutboxEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.forwarded = append(f.forwarded, entry.EventID)
	return nil
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) OutboxEntryProcessed(eventType, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, eventType+":"+outcome)
}

func newPendingEntries(t *testing.T, repo *mockOutboxRepository, serializer *EventSerializer, n int) []*shared.OutboxEntry {
	t.Helper()
	entries := make([]*shared.OutboxEntry, n)
	for i := range entries {
		event := newTestEvent("TestEvent")
		payload, err := serializer.Serialize(event)
		require.NoError(t, err)
		entries[i] = shared.NewOutboxEntry(event, payload)
		require.NoError(t, repo.Save(context.Background(), entries[i]))
	}
	return entries
}

func TestOutboxProcessor_ForwardsEntriesWithBoundedWorkers(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	RegisterEvent[testEvent](serializer, "TestEvent")
	repo := newMockOutboxRepository()
	entries := newPendingEntries(t, repo, serializer, 10)

	forwarder := &stubForwarder{}
	observer := &recordingObserver{}
	config := DefaultOutboxProcessorConfig()
	config.Workers = 3
	processor := NewOutboxProcessor(repo, NewInMemoryEventBus(logger), serializer, config, logger,
		WithForwarder(forwarder), WithObserver(observer))

	processor.processBatch(context.Background())

	assert.Len(t, forwarder.forwarded, len(entries))
	assert.Len(t, observer.outcomes, len(entries))
	for _, e := range entries {
		assert.Equal(t, shared.OutboxStatusSent, repo.entries[e.ID].Status)
		assert.NotNil(t, repo.entries[e.ID].ProcessedAt)
	}
}

func TestOutboxProcessor_ForwardFailureSchedulesRetryThenDead(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	RegisterEvent[testEvent](serializer, "TestEvent")
	repo := newMockOutboxRepository()
	entry := newPendingEntries(t, repo, serializer, 1)[0]
	entry.MaxRetries = 2

	observer := &recordingObserver{}
	forwarder := &stubForwarder{err: errors.New("broker unavailable")}
	processor := NewOutboxProcessor(repo, NewInMemoryEventBus(logger), serializer,
		DefaultOutboxProcessorConfig(), logger, WithForwarder(forwarder), WithObserver(observer))

	processor.processBatch(context.Background())

	stored := repo.entries[entry.ID]
	assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	require.NotNil(t, stored.NextRetryAt)
	assert.Contains(t, stored.LastError, "broker unavailable")

	// the retry is due once NextRetryAt has passed
	past := time.Now().Add(-time.Second)
	stored.NextRetryAt = &past
	repo.findRetryableFn = func(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
		return []*shared.OutboxEntry{stored}, nil
	}
	processor.processBatch(context.Background())

	assert.Equal(t, shared.OutboxStatusDead, repo.entries[entry.ID].Status)
	assert.Equal(t, []string{"TestEvent:failed", "TestEvent:dead"}, observer.outcomes)
}

func TestOutboxProcessor_CleanupResetsStuckEntries(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	repo := newMockOutboxRepository()

	event := newTestEvent("TestEvent")
	stuck := shared.NewOutboxEntry(event, []byte(`{}`))
	stuck.Status = shared.OutboxStatusProcessing
	stuck.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(context.Background(), stuck))

	var deletedBefore time.Time
	repo.deleteFn = func(ctx context.Context, before time.Time) (int64, error) {
		deletedBefore = before
		return 3, nil
	}

	config := DefaultOutboxProcessorConfig()
	processor := NewOutboxProcessor(repo, NewInMemoryEventBus(logger), serializer, config, logger)
	processor.cleanup(context.Background())

	assert.Equal(t, 1, repo.resetStuckCalls)
	assert.Equal(t, shared.OutboxStatusPending, repo.entries[stuck.ID].Status)
	assert.WithinDuration(t, time.Now().Add(-config.CleanupRetention), deletedBefore, time.Minute)
}

func TestOutboxProcessor_SubscriberFailureRedeliversToFailedSubscriberOnly(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	RegisterEvent[testEvent](serializer, "TestEvent")
	repo := newMockOutboxRepository()
	entry := newPendingEntries(t, repo, serializer, 1)[0]

	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	healthy := newRecordingSubscriber("TestEvent")
	flaky := newRecordingSubscriber("TestEvent")
	flaky.fail(errors.New("audit sink down"))

	bus := NewInMemoryEventBus(logger)
	bus.Subscribe(NewIdempotentHandler(healthy, store, logger, WithHandlerName("healthy")))
	bus.Subscribe(NewIdempotentHandler(flaky, store, logger, WithHandlerName("flaky")))
	processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), logger)

	processor.processBatch(context.Background())
	stored := repo.entries[entry.ID]
	assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
	assert.Contains(t, stored.LastError, "audit sink down")

	flaky.fail(nil)
	past := time.Now().Add(-time.Second)
	stored.NextRetryAt = &past
	repo.findRetryableFn = func(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
		return []*shared.OutboxEntry{stored}, nil
	}
	processor.processBatch(context.Background())

	assert.Equal(t, shared.OutboxStatusSent, repo.entries[entry.ID].Status)
	assert.Len(t, healthy.received(), 1, "the healthy subscriber skips the redelivery")
	assert.Len(t, flaky.received(), 2)
}
