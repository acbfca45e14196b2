package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/menubridge/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order domain entity.
// The marketplace order ID is unique per tenant; the unique index is what
// turns a redelivered order webhook into a duplicate-key error instead of a
// second row.
type OrderModel struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_marketplace,priority:1;index:idx_orders_tenant,priority:1"`
	MarketplaceOrderID string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_tenant_marketplace,priority:2"`
	ProviderOrderID    string           `gorm:"type:varchar(100)"`
	CustomerName       string           `gorm:"type:varchar(255);not null"`
	Status             string           `gorm:"type:varchar(20);not null"`
	TotalAmount        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	RawPayload         string           `gorm:"type:jsonb"`
	Items              []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time        `gorm:"not null;index"`
	UpdatedAt          time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for one order line
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]order.Item, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, order.Item{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return &order.Order{
		ID:                 m.ID,
		TenantID:           m.TenantID,
		MarketplaceOrderID: m.MarketplaceOrderID,
		ProviderOrderID:    m.ProviderOrderID,
		CustomerName:       m.CustomerName,
		Status:             order.Status(m.Status),
		TotalAmount:        m.TotalAmount,
		RawPayload:         m.RawPayload,
		Items:              items,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID
	m.TenantID = o.TenantID
	m.MarketplaceOrderID = o.MarketplaceOrderID
	m.ProviderOrderID = o.ProviderOrderID
	m.CustomerName = o.CustomerName
	m.Status = o.Status.String()
	m.TotalAmount = o.TotalAmount
	m.RawPayload = o.RawPayload
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt

	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for _, it := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:        uuid.New(),
			OrderID:   o.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
