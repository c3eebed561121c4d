package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
)

// ProductRepository persists products together with their sale prices
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, product *Product) error
}
