package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
type SalesOrderModel struct {
	AggregateModel
	StoreID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	StoreCode    int               `gorm:"not null"`
	CustomerID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	CustomerName string            `gorm:"type:varchar(200);not null"`
	Status       trade.OrderStatus `gorm:"type:varchar(20);not null;default:'EDITING';index"`
	TotalAmount  decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ClosedAt     *time.Time        `gorm:"index"`
	CancelledAt  *time.Time
	CancelReason string                `gorm:"type:varchar(500)"`
	Items        []SalesOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder entity.
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StoreID:           m.StoreID,
		StoreCode:         m.StoreCode,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		Status:            m.Status,
		TotalAmount:       m.TotalAmount,
		ClosedAt:          m.ClosedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Items:             make([]trade.SalesOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		order.Items[i] = *item.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain SalesOrder entity.
func (m *SalesOrderModel) FromDomain(o *trade.SalesOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.StoreID = o.StoreID
	m.StoreCode = o.StoreCode
	m.CustomerID = o.CustomerID
	m.CustomerName = o.CustomerName
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.ClosedAt = o.ClosedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]SalesOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *SalesOrderItemModelFromDomain(&o.Items[i])
	}
}

// SalesOrderModelFromDomain creates a new persistence model from a domain SalesOrder entity.
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{}
	m.FromDomain(o)
	return m
}

// SalesOrderItemModel is the persistence model for the SalesOrderItem entity.
type SalesOrderItemModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sales_order_item_product,priority:1"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sales_order_item_product,priority:2"`
	ProductCode        string          `gorm:"type:varchar(50);not null"`
	ProductDescription string          `gorm:"type:varchar(500);not null"`
	Quantity           int             `gorm:"not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// ToDomain converts the persistence model to a domain SalesOrderItem entity.
func (m *SalesOrderItemModel) ToDomain() *trade.SalesOrderItem {
	return &trade.SalesOrderItem{
		ID:                 m.ID,
		OrderID:            m.OrderID,
		ProductID:          m.ProductID,
		ProductCode:        m.ProductCode,
		ProductDescription: m.ProductDescription,
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		Amount:             m.Amount,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SalesOrderItem entity.
func (m *SalesOrderItemModel) FromDomain(i *trade.SalesOrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.ProductCode = i.ProductCode
	m.ProductDescription = i.ProductDescription
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.Amount = i.Amount
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// SalesOrderItemModelFromDomain creates a new persistence model from a domain SalesOrderItem entity.
func SalesOrderItemModelFromDomain(i *trade.SalesOrderItem) *SalesOrderItemModel {
	m := &SalesOrderItemModel{}
	m.FromDomain(i)
	return m
}
