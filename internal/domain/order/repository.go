package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRepository defines persistence operations for bridged orders
type OrderRepository interface {
	// Create inserts a new order with its items. The marketplace order ID is
	// unique per tenant; inserting a duplicate returns shared.ErrAlreadyExists
	// so that redelivered webhooks result in exactly one row.
	Create(ctx context.Context, o *Order) error

	// Update persists status and provider linkage changes
	Update(ctx context.Context, o *Order) error

	// FindByMarketplaceOrderID finds an order by its marketplace ID
	FindByMarketplaceOrderID(ctx context.Context, tenantID uuid.UUID, marketplaceOrderID string) (*Order, error)

	// ListRecent returns the latest orders with their items, newest first
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*Order, error)

	// ListCreatedSince returns orders created at or after the given time
	ListCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]*Order, error)

	// CountByTenant returns the total number of orders for a tenant
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// SumTotalAmount returns the summed total amount across all orders
	SumTotalAmount(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
}
