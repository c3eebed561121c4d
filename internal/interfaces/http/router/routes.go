package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hexasamples/backend/internal/interfaces/http/handler"
)

// OrdemDeVendaPath is the public create endpoint served outside the API prefix
const OrdemDeVendaPath = "/OrdemDeVenda"

// Handlers groups the HTTP handlers served under the API prefix.
// Outbox may be nil when the outbox admin endpoints are not exposed.
type Handlers struct {
	SalesOrders *handler.SalesOrderHandler
	Stores      *handler.StoreHandler
	Customers   *handler.CustomerHandler
	Products    *handler.ProductHandler
	System      *handler.SystemHandler
	Outbox      *handler.OutboxHandler
}

// DomainGroups builds one route group per bounded context
func (h Handlers) DomainGroups() []*DomainGroup {
	trade := NewDomainGroup("trade", "/sales-orders")
	trade.POST("", h.SalesOrders.Create).
		GET("", h.SalesOrders.List).
		GET("/:id", h.SalesOrders.GetByID).
		POST("/:id/items", h.SalesOrders.AddProduct).
		POST("/:id/items/:product_id/remove-quantity", h.SalesOrders.RemoveProductQuantity).
		DELETE("/:id/items/:product_id", h.SalesOrders.RemoveProduct).
		PUT("/:id/store-customer", h.SalesOrders.CorrectStoreAndCustomer).
		POST("/:id/close", h.SalesOrders.Close).
		POST("/:id/cancel", h.SalesOrders.Cancel).
		PUT("/:id/progress", h.SalesOrders.UpdateProgress)

	stores := NewDomainGroup("stores", "/stores")
	stores.POST("", h.Stores.Create).
		GET("", h.Stores.List).
		GET("/:id", h.Stores.GetByID)

	customers := NewDomainGroup("customers", "/customers")
	customers.POST("", h.Customers.Create).
		GET("", h.Customers.List).
		GET("/:id", h.Customers.GetByID)

	catalog := NewDomainGroup("catalog", "/products")
	catalog.POST("", h.Products.Create).
		GET("", h.Products.List).
		GET("/:id", h.Products.GetByID).
		PUT("/:id/prices", h.Products.SetSalePrice)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)
	if h.Outbox != nil {
		system.Group("outbox", "/outbox").
			GET("/stats", h.Outbox.GetStats).
			GET("/dead", h.Outbox.GetDeadLetterEntries).
			POST("/dead/retry", h.Outbox.RetryAllDeadEntries).
			GET("/entries/:id", h.Outbox.GetEntry).
			POST("/entries/:id/retry", h.Outbox.RetryDeadEntry)
	}

	return []*DomainGroup{trade, stores, customers, catalog, system}
}

// RegisterPublic adds the routes served at the engine root
func (h Handlers) RegisterPublic(routes gin.IRoutes) {
	routes.POST(OrdemDeVendaPath, h.SalesOrders.CreateOrdemDeVenda)
}

// RegisterAll adds every domain group to r
func (h Handlers) RegisterAll(r *Router) *Router {
	for _, g := range h.DomainGroups() {
		r.Register(g)
	}
	return r
}
