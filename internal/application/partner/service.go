package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/application/uow"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
)

// StoreService handles store registry operations
type StoreService struct {
	uow uow.UnitOfWork
}

// NewStoreService creates a new StoreService
func NewStoreService(u uow.UnitOfWork) *StoreService {
	return &StoreService{uow: u}
}

// Create registers a store. Store codes are unique.
func (s *StoreService) Create(ctx context.Context, req CreateStoreRequest) (*StoreResponse, error) {
	var resp StoreResponse
	_, err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		exists, err := repos.Stores().ExistsByCode(ctx, req.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Store with this code already exists")
		}

		store, err := partner.NewStoreWithID(optionalID(req.ID), req.Code, req.LegalName, req.TradeName, req.CNPJ)
		if err != nil {
			return err
		}
		if err := repos.Stores().Save(ctx, store); err != nil {
			return err
		}
		resp = ToStoreResponse(store)
		return uow.RecordEvents(ctx, repos, store)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByID returns a store by ID
func (s *StoreService) GetByID(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	store, err := s.uow.Repositories().Stores().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(store)
	return &resp, nil
}

// List returns a page of stores ordered by code
func (s *StoreService) List(ctx context.Context, req ListRequest) (*shared.Paginated[StoreResponse], error) {
	filter := toFilter(req, "code", "asc")
	stores, total, err := s.uow.Repositories().Stores().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]StoreResponse, len(stores))
	for i := range stores {
		items[i] = ToStoreResponse(&stores[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &page, nil
}

// CustomerService handles customer registry operations
type CustomerService struct {
	uow uow.UnitOfWork
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(u uow.UnitOfWork) *CustomerService {
	return &CustomerService{uow: u}
}

// Create registers a customer. A CPF can only be registered once.
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	var resp CustomerResponse
	_, err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		customer, err := partner.NewCustomerWithID(optionalID(req.ID), req.CPF, req.Name)
		if err != nil {
			return err
		}

		exists, err := repos.Customers().ExistsByCPF(ctx, customer.CPF)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Customer with this CPF already exists")
		}

		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		resp = ToCustomerResponse(customer)
		return uow.RecordEvents(ctx, repos, customer)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByID returns a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.uow.Repositories().Customers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List returns a page of customers ordered by name
func (s *CustomerService) List(ctx context.Context, req ListRequest) (*shared.Paginated[CustomerResponse], error) {
	filter := toFilter(req, "name", "asc")
	customers, total, err := s.uow.Repositories().Customers().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &page, nil
}

func toFilter(req ListRequest, orderBy, orderDir string) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.Search = req.Search
	filter.OrderBy = orderBy
	filter.OrderDir = orderDir
	return filter
}

func optionalID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
