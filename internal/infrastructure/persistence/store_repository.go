package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStoreRepository implements StoreRepository using GORM
type GormStoreRepository struct {
	db      *gorm.DB
	changes *changeCounter
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID finds a store by its ID
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a store by its numeric code
func (r *GormStoreRepository) FindByCode(ctx context.Context, code int) (*partner.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of stores and the total count
func (r *GormStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Store, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StoreModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(legal_name) LIKE ? ESCAPE '\' OR LOWER(trade_name) LIKE ? ESCAPE '\' OR cnpj LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var storeModels []models.StoreModel
	if err := query.Scopes(storeSort.page(filter)).Find(&storeModels).Error; err != nil {
		return nil, 0, err
	}

	stores := make([]partner.Store, len(storeModels))
	for i := range storeModels {
		stores[i] = *storeModels[i].ToDomain()
	}
	return stores, total, nil
}

// ExistsByCode reports whether a store with the code is registered
func (r *GormStoreRepository) ExistsByCode(ctx context.Context, code int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StoreModel{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a store
func (r *GormStoreRepository) Save(ctx context.Context, store *partner.Store) error {
	model := models.StoreModelFromDomain(store)
	return saveVersioned(r.db.WithContext(ctx), model.TableName(), model, store, partner.AggregateTypeStore, r.changes)
}

// Ensure GormStoreRepository implements StoreRepository
var _ partner.StoreRepository = (*GormStoreRepository)(nil)
