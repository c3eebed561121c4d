package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func newTestStore(t *testing.T, code int) *partner.Store {
	t.Helper()
	s, err := partner.NewStore(code, "Comercial Exemplo Ltda", "Exemplo", "11222333000181")
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func newTestCustomer(t *testing.T, cpf, name string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(cpf, name)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func newTestProduct(t *testing.T, code string, storeID uuid.UUID, price string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, "Produto "+code)
	require.NoError(t, err)
	require.NoError(t, p.SetSalePrice(storeID, decimal.RequireFromString(price)))
	p.ClearDomainEvents()
	return p
}
