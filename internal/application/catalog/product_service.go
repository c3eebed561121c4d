package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/application/uow"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductService handles product registry and pricing operations
type ProductService struct {
	uow uow.UnitOfWork
}

// NewProductService creates a new ProductService
func NewProductService(u uow.UnitOfWork) *ProductService {
	return &ProductService{uow: u}
}

// Create registers a product with optional store prices
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	var resp ProductResponse
	_, err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		id := uuid.Nil
		if req.ID != nil {
			id = *req.ID
		}
		product, err := catalog.NewProductWithID(id, req.Code, req.Description)
		if err != nil {
			return err
		}

		exists, err := repos.Products().ExistsByCode(ctx, product.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
		}

		for _, sp := range req.SalePrices {
			if err := setPrice(ctx, repos, product, sp.StoreID, sp.Price); err != nil {
				return err
			}
		}

		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		resp = ToProductResponse(product)
		return uow.RecordEvents(ctx, repos, product)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByID returns a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.uow.Repositories().Products().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns a page of products ordered by code
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) (*shared.Paginated[ProductResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.Search = req.Search
	filter.OrderBy = "code"
	filter.OrderDir = "asc"

	products, total, err := s.uow.Repositories().Products().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &page, nil
}

// SetSalePrice sets the price of a product at a store. Orders already
// holding the product keep their snapshot price.
func (s *ProductService) SetSalePrice(ctx context.Context, productID uuid.UUID, req SetSalePriceRequest) (*ProductResponse, error) {
	var resp ProductResponse
	_, err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := setPrice(ctx, repos, product, req.StoreID, req.Price); err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		resp = ToProductResponse(product)
		return uow.RecordEvents(ctx, repos, product)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func setPrice(ctx context.Context, repos uow.Repositories, product *catalog.Product, storeID uuid.UUID, price decimal.Decimal) error {
	if _, err := repos.Stores().FindByID(ctx, storeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("STORE_NOT_FOUND", "Store not found")
		}
		return err
	}
	return product.SetSalePrice(storeID, price)
}
