package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/application/mediator"
	tradeapp "github.com/hexasamples/backend/internal/application/trade"
	"github.com/hexasamples/backend/internal/interfaces/http/dto"
)

// SalesOrderHandler exposes the sales order commands over HTTP. Every
// endpoint builds a command, sends it through the mediator and renders
// the returned result.
type SalesOrderHandler struct {
	BaseHandler
	mediator *mediator.Mediator
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(m *mediator.Mediator) *SalesOrderHandler {
	return &SalesOrderHandler{mediator: m}
}

// sendOrderCommand dispatches cmd and writes the order result
func sendOrderCommand[C any](h *SalesOrderHandler, c *gin.Context, cmd C, successStatus int) {
	out, err := mediator.Send[C, tradeapp.OrderResult](c.Request.Context(), h.mediator, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Result(c, out.Result, out.Value, successStatus)
}

// Create godoc
// @Summary      Create a sales order
// @Description  Open an editing order for a customer at a store. Missing customer and store are reported together
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        request body CreateSalesOrderRequest true "Sales order creation request"
// @Success      201 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders [post]
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req CreateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cmd := tradeapp.CreateSalesOrderCommand{
		CustomerID: req.CustomerID,
		StoreID:    req.StoreID,
	}
	if req.ID != nil {
		cmd.ID = *req.ID
	}
	sendOrderCommand(h, c, cmd, http.StatusCreated)
}

// CreateOrdemDeVenda opens a new order from the public endpoint payload
// POST /OrdemDeVenda
func (h *SalesOrderHandler) CreateOrdemDeVenda(c *gin.Context) {
	var req OrdemDeVendaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cmd := tradeapp.CreateSalesOrderCommand{
		CustomerID: req.PessoaID,
		StoreID:    req.LojaID,
	}
	if req.ID != nil {
		cmd.ID = *req.ID
	}
	sendOrderCommand(h, c, cmd, http.StatusCreated)
}

// GetByID godoc
// @Summary      Get sales order by ID
// @Description  Retrieve a sales order with its items
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id} [get]
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sendOrderCommand(h, c, tradeapp.GetSalesOrderQuery{SalesOrderID: id}, http.StatusOK)
}

// List godoc
// @Summary      List sales orders
// @Description  Retrieve a paginated list of sales orders with optional filtering
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        search query string false "Search term (customer name, store code)"
// @Param        status query string false "Order status" Enums(EDITING, CLOSED, CANCELLED, RESERVED, PAID, DISPATCHED, DELIVERED, RETURNED, FINALIZED)
// @Param        store_id query string false "Store ID" format(uuid)
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]trade.SalesOrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders [get]
func (h *SalesOrderHandler) List(c *gin.Context) {
	var req ListSalesOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	out, err := mediator.Send[tradeapp.ListSalesOrdersQuery, tradeapp.OrderListResult](c.Request.Context(), h.mediator, req.toQuery())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !out.Succeeded() {
		h.Result(c, out.Result, nil, http.StatusOK)
		return
	}
	resp := dto.NewPaginatedResponse(out.Value)
	resp.Messages = out.Messages()
	c.JSON(http.StatusOK, resp)
}

// AddProduct godoc
// @Summary      Add a product to a sales order
// @Description  Add units of a product at the store price. Adding a product already on the order increases its quantity
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        request body AddProductRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/items [post]
func (h *SalesOrderHandler) AddProduct(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sendOrderCommand(h, c, tradeapp.AddProductCommand{
		SalesOrderID: id,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
	}, http.StatusOK)
}

// RemoveProductQuantity godoc
// @Summary      Remove product quantity
// @Description  Take units of a product off an editing order. The line is dropped when its quantity reaches zero
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        request body RemoveQuantityRequest true "Quantity to remove"
// @Success      200 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/items/{product_id}/remove-quantity [post]
func (h *SalesOrderHandler) RemoveProductQuantity(c *gin.Context) {
	id, productID, ok := h.orderAndProduct(c)
	if !ok {
		return
	}
	var req RemoveQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sendOrderCommand(h, c, tradeapp.RemoveProductQuantityCommand{
		SalesOrderID: id,
		ProductID:    productID,
		Quantity:     req.Quantity,
	}, http.StatusOK)
}

// RemoveProduct godoc
// @Summary      Remove a product from a sales order
// @Description  Drop a product line from an editing order
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/items/{product_id} [delete]
func (h *SalesOrderHandler) RemoveProduct(c *gin.Context) {
	id, productID, ok := h.orderAndProduct(c)
	if !ok {
		return
	}
	sendOrderCommand(h, c, tradeapp.RemoveProductCommand{SalesOrderID: id, ProductID: productID}, http.StatusOK)
}

// CorrectStoreAndCustomer godoc
// @Summary      Correct store and customer
// @Description  Replace the store and customer of an editing order and reprice its lines
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        request body CorrectStoreAndCustomerRequest true "New store and customer"
// @Success      200 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/store-customer [put]
func (h *SalesOrderHandler) CorrectStoreAndCustomer(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req CorrectStoreAndCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sendOrderCommand(h, c, tradeapp.CorrectStoreAndCustomerCommand{
		SalesOrderID: id,
		CustomerID:   req.CustomerID,
		StoreID:      req.StoreID,
	}, http.StatusOK)
}

// Close godoc
// @Summary      Close a sales order
// @Description  Finish editing. Only an editing order with at least one item can be closed
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/close [post]
func (h *SalesOrderHandler) Close(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sendOrderCommand(h, c, tradeapp.CloseSalesOrderCommand{SalesOrderID: id}, http.StatusOK)
}

// Cancel godoc
// @Summary      Cancel a sales order
// @Description  Cancel an editing or closed order with an optional reason
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        request body CancelSalesOrderRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/cancel [post]
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req CancelSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}
	sendOrderCommand(h, c, tradeapp.CancelSalesOrderCommand{SalesOrderID: id, Reason: req.Reason}, http.StatusOK)
}

// UpdateProgress godoc
// @Summary      Update fulfillment progress
// @Description  Move a closed order to the next fulfillment status
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        request body UpdateProgressRequest true "Target status"
// @Success      200 {object} dto.Response{data=trade.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/progress [put]
func (h *SalesOrderHandler) UpdateProgress(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sendOrderCommand(h, c, tradeapp.UpdateProgressCommand{SalesOrderID: id, Status: req.Status}, http.StatusOK)
}

func (h *SalesOrderHandler) orderAndProduct(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	productID, ok := h.parseUUIDParam(c, "product_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return id, productID, true
}
