package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/application/mediator"
	"github.com/hexasamples/backend/internal/application/uow"
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderResult is what every sales order command returns
type OrderResult = shared.ValueResult[SalesOrderResponse]

// OrderListResult is what the list query returns
type OrderListResult = shared.ValueResult[shared.Paginated[SalesOrderResponse]]

// errRejected rolls back a unit of work whose result already holds the reason
var errRejected = errors.New("sales order command rejected")

// SalesOrderHandlers handles the sales order commands and queries.
// Expected business failures are returned as failed results; the error
// return is reserved for infrastructure problems and concurrency conflicts.
type SalesOrderHandlers struct {
	uow    uow.UnitOfWork
	logger *zap.Logger
}

func NewSalesOrderHandlers(u uow.UnitOfWork, logger *zap.Logger) *SalesOrderHandlers {
	return &SalesOrderHandlers{uow: u, logger: logger}
}

// Register binds every handler to the mediator
func (h *SalesOrderHandlers) Register(m *mediator.Mediator) {
	mediator.Register(m, mediator.HandlerFunc[CreateSalesOrderCommand, OrderResult](h.CreateSalesOrder))
	mediator.Register(m, mediator.HandlerFunc[AddProductCommand, OrderResult](h.AddProduct))
	mediator.Register(m, mediator.HandlerFunc[RemoveProductQuantityCommand, OrderResult](h.RemoveProductQuantity))
	mediator.Register(m, mediator.HandlerFunc[RemoveProductCommand, OrderResult](h.RemoveProduct))
	mediator.Register(m, mediator.HandlerFunc[CorrectStoreAndCustomerCommand, OrderResult](h.CorrectStoreAndCustomer))
	mediator.Register(m, mediator.HandlerFunc[UpdateProgressCommand, OrderResult](h.UpdateProgress))
	mediator.Register(m, mediator.HandlerFunc[CloseSalesOrderCommand, OrderResult](h.Close))
	mediator.Register(m, mediator.HandlerFunc[CancelSalesOrderCommand, OrderResult](h.Cancel))
	mediator.Register(m, mediator.HandlerFunc[GetSalesOrderQuery, OrderResult](h.GetSalesOrder))
	mediator.Register(m, mediator.HandlerFunc[ListSalesOrdersQuery, OrderListResult](h.ListSalesOrders))
}

// CreateSalesOrder opens an order. A missing customer and a missing store
// are both reported in the same result.
func (h *SalesOrderHandlers) CreateSalesOrder(ctx context.Context, cmd CreateSalesOrderCommand) (OrderResult, error) {
	result := shared.Success()
	if cmd.CustomerID == uuid.Nil {
		result.AddMessage(shared.InvalidParametersMessage("Customer is required", "customer_id"))
	}
	if cmd.StoreID == uuid.Nil {
		result.AddMessage(shared.InvalidParametersMessage("Store is required", "store_id"))
	}
	if !result.Succeeded() {
		return shared.Fail[SalesOrderResponse](result), nil
	}

	var resp SalesOrderResponse
	_, err := h.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if cmd.ID != uuid.Nil {
			if _, err := repos.SalesOrders().FindByID(ctx, cmd.ID); err == nil {
				result.AddMessage(shared.ValidationMessage("Sales order already exists", "id"))
				return errRejected
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		customer, err := findCustomer(ctx, repos, cmd.CustomerID, &result)
		if err != nil {
			return err
		}
		store, err := findStore(ctx, repos, cmd.StoreID, &result)
		if err != nil {
			return err
		}
		if !result.Succeeded() {
			return errRejected
		}

		order, err := trade.NewSalesOrderWithID(cmd.ID, store, customer)
		if err != nil {
			return err
		}
		if err := repos.SalesOrders().Save(ctx, order); err != nil {
			return err
		}
		resp = ToSalesOrderResponse(order)
		return uow.RecordEvents(ctx, repos, order)
	})
	return h.finish(&result, resp, err)
}

// AddProduct adds units of a product, accumulating on an existing line
func (h *SalesOrderHandlers) AddProduct(ctx context.Context, cmd AddProductCommand) (OrderResult, error) {
	if cmd.Quantity <= 0 {
		return shared.Fail[SalesOrderResponse](shared.InvalidParameters("Quantity must be greater than zero", "quantity")), nil
	}
	return h.mutate(ctx, cmd.SalesOrderID, func(ctx context.Context, repos uow.Repositories, order *trade.SalesOrder, result *shared.Result) error {
		product, err := findProduct(ctx, repos, cmd.ProductID, result)
		if err != nil || product == nil {
			return err
		}
		return order.AddProduct(product, cmd.Quantity)
	})
}

// RemoveProductQuantity takes units off a line, dropping it when empty
func (h *SalesOrderHandlers) RemoveProductQuantity(ctx context.Context, cmd RemoveProductQuantityCommand) (OrderResult, error) {
	if cmd.Quantity <= 0 {
		return shared.Fail[SalesOrderResponse](shared.InvalidParameters("Quantity must be greater than zero", "quantity")), nil
	}
	return h.mutate(ctx, cmd.SalesOrderID, func(ctx context.Context, _ uow.Repositories, order *trade.SalesOrder, _ *shared.Result) error {
		return order.RemoveProductQuantity(cmd.ProductID, cmd.Quantity)
	})
}

func (h *SalesOrderHandlers) RemoveProduct(ctx context.Context, cmd RemoveProductCommand) (OrderResult, error) {
	return h.mutate(ctx, cmd.SalesOrderID, func(ctx context.Context, _ uow.Repositories, order *trade.SalesOrder, _ *shared.Result) error {
		return order.RemoveProduct(cmd.ProductID)
	})
}

// CorrectStoreAndCustomer swaps store and customer and reprices the lines
func (h *SalesOrderHandlers) CorrectStoreAndCustomer(ctx context.Context, cmd CorrectStoreAndCustomerCommand) (OrderResult, error) {
	return h.mutate(ctx, cmd.SalesOrderID, func(ctx context.Context, repos uow.Repositories, order *trade.SalesOrder, result *shared.Result) error {
		customer, err := findCustomer(ctx, repos, cmd.CustomerID, result)
		if err != nil {
			return err
		}
		store, err := findStore(ctx, repos, cmd.StoreID, result)
		if err != nil {
			return err
		}
		if !result.Succeeded() {
			return errRejected
		}

		products := make(map[uuid.UUID]*catalog.Product, len(order.Items))
		for _, id := range order.ProductIDs() {
			p, err := repos.Products().FindByID(ctx, id)
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			products[id] = p
		}
		return order.CorrectStoreAndCustomer(store, customer, products)
	})
}

func (h *SalesOrderHandlers) UpdateProgress(ctx context.Context, cmd UpdateProgressCommand) (OrderResult, error) {
	status, ok := trade.ParseOrderStatus(cmd.Status)
	if !ok {
		return shared.Fail[SalesOrderResponse](shared.InvalidParameters("Unknown order status "+cmd.Status, "status")), nil
	}
	return h.mutate(ctx, cmd.SalesOrderID, func(ctx context.Context, _ uow.Repositories, order *trade.SalesOrder, _ *shared.Result) error {
		return order.UpdateProgress(status)
	})
}

func (h *SalesOrderHandlers) Close(ctx context.Context, cmd CloseSalesOrderCommand) (OrderResult, error) {
	return h.mutate(ctx, cmd.SalesOrderID, func(ctx context.Context, _ uow.Repositories, order *trade.SalesOrder, _ *shared.Result) error {
		return order.Close()
	})
}

func (h *SalesOrderHandlers) Cancel(ctx context.Context, cmd CancelSalesOrderCommand) (OrderResult, error) {
	return h.mutate(ctx, cmd.SalesOrderID, func(ctx context.Context, _ uow.Repositories, order *trade.SalesOrder, _ *shared.Result) error {
		return order.Cancel(cmd.Reason)
	})
}

func (h *SalesOrderHandlers) GetSalesOrder(ctx context.Context, q GetSalesOrderQuery) (OrderResult, error) {
	order, err := h.uow.Repositories().SalesOrders().FindByID(ctx, q.SalesOrderID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.Fail[SalesOrderResponse](shared.NotFound("Sales order not found")), nil
	}
	if err != nil {
		return OrderResult{}, err
	}
	return shared.Ok(ToSalesOrderResponse(order)), nil
}

func (h *SalesOrderHandlers) ListSalesOrders(ctx context.Context, q ListSalesOrdersQuery) (OrderListResult, error) {
	filter, result := q.toFilter()
	if !result.Succeeded() {
		return shared.Fail[shared.Paginated[SalesOrderResponse]](result), nil
	}

	orders, total, err := h.uow.Repositories().SalesOrders().FindAll(ctx, filter)
	if err != nil {
		return OrderListResult{}, err
	}
	items := make([]SalesOrderResponse, len(orders))
	for i := range orders {
		items[i] = ToSalesOrderResponse(&orders[i])
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return shared.Ok(shared.NewPaginated(items, total, page, filter.Limit())), nil
}

type orderMutation func(ctx context.Context, repos uow.Repositories, order *trade.SalesOrder, result *shared.Result) error

// mutate loads the order inside a unit of work, applies fn and saves the
// order with its events. A domain error from fn becomes a failed result.
func (h *SalesOrderHandlers) mutate(ctx context.Context, id uuid.UUID, fn orderMutation) (OrderResult, error) {
	result := shared.Success()
	var resp SalesOrderResponse

	_, err := h.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		order, err := repos.SalesOrders().FindByID(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			result.AddMessage(shared.NotFoundMessage("Sales order not found"))
			return errRejected
		}
		if err != nil {
			return err
		}

		if err := fn(ctx, repos, order, &result); err != nil {
			return err
		}
		if !result.Succeeded() {
			return errRejected
		}

		if err := repos.SalesOrders().Save(ctx, order); err != nil {
			return err
		}
		resp = ToSalesOrderResponse(order)
		return uow.RecordEvents(ctx, repos, order)
	})
	return h.finish(&result, resp, err)
}

func (h *SalesOrderHandlers) finish(result *shared.Result, resp SalesOrderResponse, err error) (OrderResult, error) {
	switch {
	case err == nil:
		return shared.Ok(resp), nil
	case errors.Is(err, errRejected):
		return shared.Fail[SalesOrderResponse](*result), nil
	case shared.IsConcurrencyError(err):
		h.logger.Warn("Sales order modified concurrently", zap.Error(err))
		return OrderResult{}, err
	}

	var de *shared.DomainError
	if errors.As(err, &de) {
		result.Join(shared.ResultFromError(err))
		return shared.Fail[SalesOrderResponse](*result), nil
	}
	return OrderResult{}, err
}

func findCustomer(ctx context.Context, repos uow.Repositories, id uuid.UUID, result *shared.Result) (*partner.Customer, error) {
	c, err := repos.Customers().FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		result.AddMessage(shared.NotFoundMessage("Customer not found"))
		return nil, nil
	}
	return c, err
}

func findStore(ctx context.Context, repos uow.Repositories, id uuid.UUID, result *shared.Result) (*partner.Store, error) {
	s, err := repos.Stores().FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		result.AddMessage(shared.NotFoundMessage("Store not found"))
		return nil, nil
	}
	return s, err
}

func findProduct(ctx context.Context, repos uow.Repositories, id uuid.UUID, result *shared.Result) (*catalog.Product, error) {
	p, err := repos.Products().FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		result.AddMessage(shared.NotFoundMessage("Product not found"))
		return nil, nil
	}
	return p, err
}
