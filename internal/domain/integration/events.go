package integration

import (
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Inbound marketplace order events
// ---------------------------------------------------------------------------

// OrderEventKind classifies a marketplace webhook event
type OrderEventKind string

const (
	// OrderEventPlaced covers the order-placed/scheduled/upcoming variants
	OrderEventPlaced OrderEventKind = "PLACED"
	// OrderEventCancelled is the cancellation variant
	OrderEventCancelled OrderEventKind = "CANCELLED"
	// OrderEventIgnored is any recognized-but-unhandled event type
	OrderEventIgnored OrderEventKind = "IGNORED"
)

// OrderEventItem is one line item extracted from an inbound order payload.
// Unit prices arrive in integer minor units.
type OrderEventItem struct {
	Name           string
	Quantity       int
	UnitPriceMinor int64
}

// OrderEvent is the normalized form of an inbound marketplace order webhook
type OrderEvent struct {
	TenantID uuid.UUID
	// EventID uniquely identifies this delivery for deduplication
	EventID string
	// EventType is the raw platform event type string
	EventType string
	Kind      OrderEventKind
	// MarketplaceOrderID is the order this event refers to
	MarketplaceOrderID string
	CustomerName       string
	Items              []OrderEventItem
	TotalMinor         int64
	// RawPayload is the verbatim inbound body, preserved for audit
	RawPayload string
}

// ---------------------------------------------------------------------------
// Inbound provider stock events
// ---------------------------------------------------------------------------

// Stock states considered by the availability propagator; all others ignored
const (
	StockStateInStock = "IN_STOCK"
	StockStateSold    = "SOLD"
)

// StockCount is one per-item inventory count from a provider stock event
type StockCount struct {
	ProviderItemID string
	State          string
	Quantity       int64
}

// Relevant reports whether this count drives availability
func (c StockCount) Relevant() bool {
	return c.State == StockStateInStock || c.State == StockStateSold
}

// Available derives the availability flag from the counted quantity
func (c StockCount) Available() bool {
	return c.Quantity > 0
}

// StockEvent is the normalized form of an inbound provider inventory webhook
type StockEvent struct {
	TenantID  uuid.UUID
	EventID   string
	EventType string
	Counts    []StockCount
}
