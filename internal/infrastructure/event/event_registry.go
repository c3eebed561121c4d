package event

import (
	"github.com/hexasamples/backend/internal/domain/catalog"
	"github.com/hexasamples/backend/internal/domain/partner"
	"github.com/hexasamples/backend/internal/domain/trade"
)

// RegisterAllEvents makes every event the domain emits decodable. The
// outbox processor cannot deliver a type missing here.
func RegisterAllEvents(s *EventSerializer) {
	RegisterEvent[trade.SalesOrderCreatedEvent](s, trade.EventTypeSalesOrderCreated)
	RegisterEvent[trade.SalesOrderItemAddedEvent](s, trade.EventTypeSalesOrderItemAdded)
	RegisterEvent[trade.SalesOrderItemQuantityRemovedEvent](s, trade.EventTypeSalesOrderItemQuantityRemoved)
	RegisterEvent[trade.SalesOrderItemRemovedEvent](s, trade.EventTypeSalesOrderItemRemoved)
	RegisterEvent[trade.SalesOrderStoreCustomerCorrectedEvent](s, trade.EventTypeSalesOrderStoreCustomerCorrected)
	RegisterEvent[trade.SalesOrderClosedEvent](s, trade.EventTypeSalesOrderClosed)
	RegisterEvent[trade.SalesOrderCancelledEvent](s, trade.EventTypeSalesOrderCancelled)
	RegisterEvent[trade.SalesOrderProgressUpdatedEvent](s, trade.EventTypeSalesOrderProgressUpdated)

	RegisterEvent[partner.StoreRegisteredEvent](s, partner.EventTypeStoreRegistered)
	RegisterEvent[partner.CustomerRegisteredEvent](s, partner.EventTypeCustomerRegistered)
	RegisterEvent[catalog.ProductRegisteredEvent](s, catalog.EventTypeProductRegistered)
	RegisterEvent[catalog.ProductPriceChangedEvent](s, catalog.EventTypeProductPriceChanged)
}
