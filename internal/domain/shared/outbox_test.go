package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseDomainEvent
}

func newTestEvent() *testEvent {
	return &testEvent{BaseDomainEvent: NewBaseDomainEvent("TestHappened", "Test", uuid.New())}
}

func TestNewOutboxEntry(t *testing.T) {
	evt := newTestEvent()
	entry := NewOutboxEntry(evt, []byte(`{"a":1}`))

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "TestHappened", entry.EventType)
	assert.Equal(t, evt.AggregateID(), entry.AggregateID)
	assert.Equal(t, "Test", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	t.Run("claims pending and failed entries", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusFailed} {
			entry := &OutboxEntry{Status: status}
			require.NoError(t, entry.MarkProcessing())
			assert.Equal(t, OutboxStatusProcessing, entry.Status)
		}
	})

	t.Run("rejects other states", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusProcessing, OutboxStatusSent, OutboxStatusDead} {
			entry := &OutboxEntry{Status: status}
			assert.Error(t, entry.MarkProcessing())
			assert.Equal(t, status, entry.Status)
		}
	})
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("schedules retry with backoff", func(t *testing.T) {
		entry := NewOutboxEntry(newTestEvent(), nil)
		before := time.Now()

		entry.MarkFailed("broker down")

		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.Equal(t, 1, entry.RetryCount)
		assert.Equal(t, "broker down", entry.LastError)
		require.NotNil(t, entry.NextRetryAt)
		assert.True(t, entry.NextRetryAt.After(before))
		assert.True(t, entry.CanRetry())
	})

	t.Run("moves to dead after max retries", func(t *testing.T) {
		entry := NewOutboxEntry(newTestEvent(), nil)
		entry.MaxRetries = 2

		entry.MarkFailed("first")
		entry.MarkFailed("second")

		assert.True(t, entry.IsDead())
		assert.Nil(t, entry.NextRetryAt)
		assert.False(t, entry.CanRetry())
	})
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := NewOutboxEntry(newTestEvent(), nil)
	entry.LastError = "old"

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	assert.NotNil(t, entry.ProcessedAt)
	assert.Empty(t, entry.LastError)
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("resets dead entry", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusDead, RetryCount: 5, LastError: "boom"}

		require.NoError(t, entry.ResetForRetry())
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Zero(t, entry.RetryCount)
		assert.Empty(t, entry.LastError)
	})

	t.Run("rejects live entry", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusPending}
		assert.Error(t, entry.ResetForRetry())
	})
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{30, 10 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RetryBackoff(tt.attempt), "attempt %d", tt.attempt)
	}
}
