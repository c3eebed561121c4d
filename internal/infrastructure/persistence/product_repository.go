package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM.
// Sale prices are loaded and replaced together with their product.
type GormProductRepository struct {
	db      *gorm.DB
	changes *changeCounter
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func salePricesInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("SalePrices", salePricesInOrder).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a product by its code (case insensitive)
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Preload("SalePrices", salePricesInOrder).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of products and the total count
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(code) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var productModels []models.ProductModel
	if err := query.Scopes(productSort.page(filter)).
		Preload("SalePrices", salePricesInOrder).
		Find(&productModels).Error; err != nil {
		return nil, 0, err
	}

	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
	}
	return products, total, nil
}

// ExistsByCode reports whether a product with the code is registered
func (r *GormProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product and replaces its sale prices
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	db := r.db.WithContext(ctx)
	if err := saveVersioned(db, model.TableName(), model, product, catalog.AggregateTypeProduct, r.changes); err != nil {
		return err
	}

	result := db.Where("product_id = ?", product.ID).Delete(&models.SalePriceModel{})
	if result.Error != nil {
		return result.Error
	}
	r.changes.add(result.RowsAffected)

	if len(model.SalePrices) == 0 {
		return nil
	}
	for i := range model.SalePrices {
		if model.SalePrices[i].ID == uuid.Nil {
			model.SalePrices[i].ID = uuid.New()
			product.SalePrices[i].ID = model.SalePrices[i].ID
		}
	}
	result = db.Create(&model.SalePrices)
	if result.Error != nil {
		return result.Error
	}
	r.changes.add(result.RowsAffected)
	return nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
