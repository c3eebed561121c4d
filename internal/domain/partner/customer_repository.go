package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
)

// CustomerRepository persists customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, int64, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	Save(ctx context.Context, customer *Customer) error
}
