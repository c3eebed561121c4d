// Package event holds the operator side of the transactional outbox:
// inspecting delivery state and requeueing entries that ran out of retries.
package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// requeueBatch is how many dead entries RetryAllDeadEntries loads at a time
const requeueBatch = 100

var (
	errEntryNotFound = shared.NewDomainError("ENTRY_NOT_FOUND", "Outbox entry not found")
	errEntryNotDead  = shared.NewDomainError("INVALID_STATE", "Only dead entries can be retried")
)

type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{repo: repo, logger: logger.Named("outbox")}
}

// OutboxEntryDTO is the API view of an entry. The event payload stays internal.
type OutboxEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func newOutboxEntryDTO(e *shared.OutboxEntry) OutboxEntryDTO {
	return OutboxEntryDTO{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// OutboxFilter pages through dead letters
type OutboxFilter struct {
	Page     int `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// GetDeadLetterEntries lists entries that exhausted their retries, oldest first
func (s *OutboxService) GetDeadLetterEntries(ctx context.Context, filter OutboxFilter) (*shared.Paginated[OutboxEntryDTO], error) {
	f := shared.Filter{Page: max(filter.Page, 1), PageSize: filter.PageSize}

	entries, total, err := s.repo.FindDead(ctx, f.Page, f.Limit())
	if err != nil {
		s.logger.Error("Failed to list dead letters", zap.Error(err))
		return nil, err
	}

	items := make([]OutboxEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, newOutboxEntryDTO(e))
	}
	page := shared.NewPaginated(items, total, f.Page, f.Limit())
	return &page, nil
}

func (s *OutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := newOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryDeadEntry requeues one dead entry with a fresh retry budget. Entries
// in any other state are still owned by the processor and are refused.
func (s *OutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requeue(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Dead letter requeued",
		zap.Stringer("id", id),
		zap.String("event_type", entry.EventType),
		zap.Stringer("aggregate_id", entry.AggregateID),
	)
	dto := newOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryAllDeadEntries requeues every dead entry and returns how many moved.
// Requeued entries drop out of the dead set, so each round reads page one
// again. It stops when a round moves nothing, which keeps a failing update
// from looping forever.
func (s *OutboxService) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	var requeued int64
	for {
		entries, _, err := s.repo.FindDead(ctx, 1, requeueBatch)
		if err != nil {
			s.logger.Error("Failed to list dead letters", zap.Error(err), zap.Int64("requeued", requeued))
			return requeued, err
		}

		moved := 0
		for _, entry := range entries {
			if s.requeue(ctx, entry) == nil {
				moved++
			}
		}
		requeued += int64(moved)

		if len(entries) < requeueBatch || moved == 0 {
			break
		}
	}

	s.logger.Info("Dead letters requeued", zap.Int64("count", requeued))
	return requeued, nil
}

// GetStats counts entries per status
func (s *OutboxService) GetStats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count outbox entries", zap.Error(err))
		return nil, err
	}

	stats := &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *OutboxService) load(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, shared.ErrNotFound), err == nil && entry == nil:
		return nil, errEntryNotFound
	case err != nil:
		s.logger.Error("Failed to load outbox entry", zap.Error(err), zap.Stringer("id", id))
		return nil, err
	}
	return entry, nil
}

func (s *OutboxService) requeue(ctx context.Context, entry *shared.OutboxEntry) error {
	if entry.ResetForRetry() != nil {
		return errEntryNotDead
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to requeue outbox entry", zap.Error(err), zap.Stringer("id", entry.ID))
		return err
	}
	return nil
}
