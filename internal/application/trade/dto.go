package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared/valueobject"
	"github.com/hexasamples/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SalesOrderResponse is the API view of a sales order
type SalesOrderResponse struct {
	ID            uuid.UUID                `json:"id"`
	StoreID       uuid.UUID                `json:"store_id"`
	StoreCode     int                      `json:"store_code"`
	CustomerID    uuid.UUID                `json:"customer_id"`
	CustomerName  string                   `json:"customer_name"`
	Status        string                   `json:"status"`
	Items         []SalesOrderItemResponse `json:"items"`
	ItemCount     int                      `json:"item_count"`
	TotalQuantity int                      `json:"total_quantity"`
	Total         valueobject.Money        `json:"total"`
	ClosedAt      *time.Time               `json:"closed_at,omitempty"`
	CancelledAt   *time.Time               `json:"cancelled_at,omitempty"`
	CancelReason  string                   `json:"cancel_reason,omitempty"`
	Version       int                      `json:"version"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// SalesOrderItemResponse is the API view of an order line
type SalesOrderItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"product_id"`
	ProductCode        string          `json:"product_code"`
	ProductDescription string          `json:"product_description"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Amount             decimal.Decimal `json:"amount"`
}

// ToSalesOrderResponse maps the aggregate to its API view
func ToSalesOrderResponse(o *trade.SalesOrder) SalesOrderResponse {
	items := make([]SalesOrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = SalesOrderItemResponse{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductCode:        item.ProductCode,
			ProductDescription: item.ProductDescription,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			Amount:             item.Amount,
		}
	}
	return SalesOrderResponse{
		ID:            o.ID,
		StoreID:       o.StoreID,
		StoreCode:     o.StoreCode,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		Status:        o.Status.String(),
		Items:         items,
		ItemCount:     o.ItemCount(),
		TotalQuantity: o.TotalQuantity(),
		Total:         o.TotalMoney(),
		ClosedAt:      o.ClosedAt,
		CancelledAt:   o.CancelledAt,
		CancelReason:  o.CancelReason,
		Version:       o.GetVersion(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
