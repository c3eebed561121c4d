package persistence

import (
	"context"
	"fmt"

	"github.com/hexasamples/backend/internal/application/uow"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table. Used in sample mode and tests;
// deployed databases are migrated with cmd/migrate.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Demo data registered by Seed
const (
	DemoStoreCode   = 1
	DemoCustomerCPF = "52998224725"
	DemoProductCode = "SKU-0001"
)

// Seed registers a demo store, customer and priced product unless the store
// already exists. Registration events go to the outbox like any other write.
func Seed(ctx context.Context, unit uow.UnitOfWork) error {
	_, err := unit.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		exists, err := repos.Stores().ExistsByCode(ctx, DemoStoreCode)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		store, err := partner.NewStore(DemoStoreCode, "Loja Exemplo Comercio Ltda", "Loja Exemplo", "11.222.333/0001-81")
		if err != nil {
			return err
		}
		customer, err := partner.NewCustomer(DemoCustomerCPF, "Maria da Silva")
		if err != nil {
			return err
		}
		product, err := catalog.NewProduct(DemoProductCode, "Camiseta basica")
		if err != nil {
			return err
		}
		if err := product.SetSalePrice(store.ID, decimal.RequireFromString("49.90")); err != nil {
			return err
		}

		if err := repos.Stores().Save(ctx, store); err != nil {
			return err
		}
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		for _, agg := range []shared.AggregateRoot{store, customer, product} {
			if err := uow.RecordEvents(ctx, repos, agg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	return nil
}
