package persistence

import (
	"errors"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// versionedModel is implemented by every model embedding models.AggregateModel
type versionedModel interface {
	SetVersion(v int)
}

// changeCounter accumulates affected rows for a unit of work
type changeCounter struct {
	n int64
}

func (c *changeCounter) add(rows int64) {
	if c != nil {
		c.n += rows
	}
}

// saveVersioned writes an aggregate row with an optimistic lock.
//
// The row is first updated with WHERE version = <loaded version>. When that
// touches nothing and the row exists someone else saved first, so a
// *shared.ConcurrencyError is returned. When the row does not exist it is
// inserted. On a successful update the aggregate's version is incremented.
// Associations are never written here.
func saveVersioned(tx *gorm.DB, table string, model versionedModel, agg shared.AggregateRoot, aggType string, changes *changeCounter) error {
	id := agg.GetID()
	loaded := agg.GetVersion()

	model.SetVersion(loaded + 1)
	result := tx.Table(table).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Where("id = ? AND version = ?", id, loaded).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		agg.IncrementVersion()
		changes.add(result.RowsAffected)
		return nil
	}

	exists, err := rowExists(tx, table, id)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewConcurrencyError(aggType, id.String(), loaded, nil)
	}

	model.SetVersion(loaded)
	result = tx.Table(table).Omit(clause.Associations).Create(model)
	if result.Error != nil {
		return result.Error
	}
	changes.add(result.RowsAffected)
	return nil
}

func rowExists(tx *gorm.DB, table string, id uuid.UUID) (bool, error) {
	var count int64
	if err := tx.Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// notFound maps gorm's missing-row error to the domain one
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
