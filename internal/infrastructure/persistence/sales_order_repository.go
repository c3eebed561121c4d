package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
	"github.com/hexasamples/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db      *gorm.DB
	changes *changeCounter
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order by its ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of sales orders with their items and the total count
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter trade.SalesOrderFilter) ([]trade.SalesOrder, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SalesOrderModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.SalesOrderModel
	if err := query.Scopes(salesOrderSort.page(filter.Filter)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]trade.SalesOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, total, nil
}

// Save creates or updates a sales order. The item rows are replaced so
// that the table always mirrors the aggregate's lines.
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	model := models.SalesOrderModelFromDomain(order)
	db := r.db.WithContext(ctx)
	if err := saveVersioned(db, model.TableName(), model, order, trade.AggregateTypeSalesOrder, r.changes); err != nil {
		return err
	}

	result := db.Where("order_id = ?", order.ID).Delete(&models.SalesOrderItemModel{})
	if result.Error != nil {
		return result.Error
	}
	r.changes.add(result.RowsAffected)

	if len(model.Items) == 0 {
		return nil
	}
	result = db.Create(&model.Items)
	if result.Error != nil {
		return result.Error
	}
	r.changes.add(result.RowsAffected)
	return nil
}

// Delete removes a sales order and its items
func (r *GormSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	items := db.Where("order_id = ?", id).Delete(&models.SalesOrderItemModel{})
	if items.Error != nil {
		return items.Error
	}
	result := db.Delete(&models.SalesOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	r.changes.add(items.RowsAffected + result.RowsAffected)
	return nil
}

// CountByStatus returns the number of orders in each status
func (r *GormSalesOrderRepository) CountByStatus(ctx context.Context) (map[trade.OrderStatus]int64, error) {
	var rows []struct {
		Status trade.OrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.SalesOrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[trade.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// applyFilter applies the order filter without pagination
func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter trade.SalesOrderFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Search != "" {
		query = query.Where(`LOWER(customer_name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}
	return query
}

// Ensure GormSalesOrderRepository implements SalesOrderRepository
var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
