package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeOrderRecorder struct {
	events []string
	totals []float64
}

func (r *fakeOrderRecorder) RecordOrderEvent(eventType string) {
	r.events = append(r.events, eventType)
}
func (r *fakeOrderRecorder) ObserveClosedOrderTotal(total float64) {
	r.totals = append(r.totals, total)
}

func closedEvent(total string) *trade.SalesOrderClosedEvent {
	id := uuid.New()
	return &trade.SalesOrderClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSalesOrderClosed, trade.AggregateTypeSalesOrder, id),
		OrderID:         id,
		Items:           []trade.SalesOrderItemInfo{{ProductCode: "CAF01", Quantity: 2}},
		TotalAmount:     decimal.RequireFromString(total),
	}
}

func TestSalesOrderMetricsHandler(t *testing.T) {
	recorder := &fakeOrderRecorder{}
	h := NewSalesOrderMetricsHandler(recorder)
	assert.Equal(t, trade.SalesOrderEventTypes(), h.EventTypes())

	cancelID := uuid.New()
	cancelled := &trade.SalesOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSalesOrderCancelled, trade.AggregateTypeSalesOrder, cancelID),
		OrderID:         cancelID,
	}
	require.NoError(t, h.Handle(context.Background(), closedEvent("39.80")))
	require.NoError(t, h.Handle(context.Background(), cancelled))

	assert.Equal(t, []string{trade.EventTypeSalesOrderClosed, trade.EventTypeSalesOrderCancelled}, recorder.events)
	assert.Equal(t, []float64{39.8}, recorder.totals)
}

func TestSalesOrderActivityLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewSalesOrderActivityLogger(zap.New(core))

	event := closedEvent("12.00")
	require.NoError(t, h.Handle(context.Background(), event))

	entries := logs.FilterMessage("Sales order activity").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, trade.EventTypeSalesOrderClosed, fields["event_type"])
	assert.Equal(t, event.OrderID.String(), fields["order_id"])
	assert.Equal(t, "12.00", fields["total"])
	assert.EqualValues(t, 1, fields["lines"])
}

func TestEventHandlerNamesAreDistinct(t *testing.T) {
	assert.NotEqual(t,
		NewSalesOrderActivityLogger(zap.NewNop()).Name(),
		NewSalesOrderMetricsHandler(&fakeOrderRecorder{}).Name(),
	)
}
