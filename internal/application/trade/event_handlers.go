package trade

import (
	"context"

	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SalesOrderActivityLogger writes an audit line for every sales order event
type SalesOrderActivityLogger struct {
	logger *zap.Logger
}

func NewSalesOrderActivityLogger(logger *zap.Logger) *SalesOrderActivityLogger {
	return &SalesOrderActivityLogger{logger: logger}
}

// Name keys the logger's idempotency marks
func (h *SalesOrderActivityLogger) Name() string { return "sales_order.activity_log" }

func (h *SalesOrderActivityLogger) EventTypes() []string {
	return trade.SalesOrderEventTypes()
}

func (h *SalesOrderActivityLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("order_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *trade.SalesOrderCreatedEvent:
		fields = append(fields, zap.Int("store_code", e.StoreCode), zap.String("customer", e.CustomerName))
	case *trade.SalesOrderItemAddedEvent:
		fields = append(fields,
			zap.String("product_code", e.ProductCode),
			zap.Int("added", e.AddedQuantity),
			zap.Int("line_quantity", e.LineQuantity),
			zap.String("total", e.TotalAmount.StringFixed(2)),
		)
	case *trade.SalesOrderItemQuantityRemovedEvent:
		fields = append(fields, zap.Int("removed", e.RemovedQuantity), zap.Int("line_quantity", e.LineQuantity))
	case *trade.SalesOrderItemRemovedEvent:
		fields = append(fields, zap.String("product_code", e.ProductCode))
	case *trade.SalesOrderClosedEvent:
		fields = append(fields, zap.Int("lines", len(e.Items)), zap.String("total", e.TotalAmount.StringFixed(2)))
	case *trade.SalesOrderCancelledEvent:
		fields = append(fields, zap.String("previous_status", e.PreviousStatus.String()), zap.String("reason", e.Reason))
	case *trade.SalesOrderProgressUpdatedEvent:
		fields = append(fields, zap.String("from", e.From.String()), zap.String("to", e.To.String()))
	}

	h.logger.Info("Sales order activity", fields...)
	return nil
}

// OrderEventRecorder receives sales order business metrics
type OrderEventRecorder interface {
	RecordOrderEvent(eventType string)
	ObserveClosedOrderTotal(total float64)
}

// SalesOrderMetricsHandler turns sales order events into business metrics
type SalesOrderMetricsHandler struct {
	recorder OrderEventRecorder
}

func NewSalesOrderMetricsHandler(recorder OrderEventRecorder) *SalesOrderMetricsHandler {
	return &SalesOrderMetricsHandler{recorder: recorder}
}

func (h *SalesOrderMetricsHandler) Name() string { return "sales_order.metrics" }

func (h *SalesOrderMetricsHandler) EventTypes() []string {
	return trade.SalesOrderEventTypes()
}

func (h *SalesOrderMetricsHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.recorder.RecordOrderEvent(event.EventType())
	if closed, ok := event.(*trade.SalesOrderClosedEvent); ok {
		total, _ := closed.TotalAmount.Float64()
		h.recorder.ObserveClosedOrderTotal(total)
	}
	return nil
}
