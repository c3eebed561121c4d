package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
)

// StoreRepository persists stores
type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindByCode(ctx context.Context, code int) (*Store, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Store, int64, error)
	ExistsByCode(ctx context.Context, code int) (bool, error)
	Save(ctx context.Context, store *Store) error
}
