package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order errors
var (
	ErrInvalidTenantID           = errors.New("order: invalid tenant ID")
	ErrInvalidMarketplaceOrderID = errors.New("order: invalid marketplace order ID")
	ErrOrderNotFound             = errors.New("order: order not found")
	ErrInvalidTransition         = errors.New("order: invalid status transition")
)

// MarketplaceCustomerPlaceholder is used when no customer name can be
// extracted from the inbound order payload
const MarketplaceCustomerPlaceholder = "Marketplace Customer"

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// Status represents the bridging status of a marketplace order
type Status string

const (
	// StatusPending indicates the order was received but not yet bridged
	StatusPending Status = "PENDING"
	// StatusAccepted indicates the provider order was created successfully
	StatusAccepted Status = "ACCEPTED"
	// StatusCompleted indicates the order was fulfilled
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates provider order creation failed
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the marketplace cancelled the order
	StatusCancelled Status = "CANCELLED"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further automatic transition leaves this status
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine permits moving to next.
// pending → accepted → completed; pending|accepted → failed;
// pending|accepted → cancelled. Cancelling again is treated as permitted
// elsewhere (idempotent no-op), not as a machine transition.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusAccepted || next == StatusFailed || next == StatusCancelled
	case StatusAccepted:
		return next == StatusCompleted || next == StatusFailed || next == StatusCancelled
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Order Entity
// ---------------------------------------------------------------------------

// Item is one line of a bridged order
type Item struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Order is a marketplace order bridged into the local system. The raw inbound
// payload is preserved verbatim for audit and replay.
type Order struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	MarketplaceOrderID string
	ProviderOrderID    string
	CustomerName       string
	Status             Status
	TotalAmount        decimal.Decimal
	RawPayload         string
	Items              []Item
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrder creates a pending order from an inbound marketplace order event
func NewOrder(tenantID uuid.UUID, marketplaceOrderID, customerName string, total decimal.Decimal, rawPayload string, items []Item) (*Order, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if marketplaceOrderID == "" {
		return nil, ErrInvalidMarketplaceOrderID
	}
	if customerName == "" {
		customerName = MarketplaceCustomerPlaceholder
	}

	now := time.Now()
	return &Order{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		MarketplaceOrderID: marketplaceOrderID,
		CustomerName:       customerName,
		Status:             StatusPending,
		TotalAmount:        total,
		RawPayload:         rawPayload,
		Items:              items,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// MarkAccepted records successful provider order creation
func (o *Order) MarkAccepted(providerOrderID string) error {
	if !o.Status.CanTransitionTo(StatusAccepted) {
		return ErrInvalidTransition
	}
	o.Status = StatusAccepted
	o.ProviderOrderID = providerOrderID
	o.UpdatedAt = time.Now()
	return nil
}

// MarkFailed records a provider order creation failure
func (o *Order) MarkFailed() error {
	if !o.Status.CanTransitionTo(StatusFailed) {
		return ErrInvalidTransition
	}
	o.Status = StatusFailed
	o.UpdatedAt = time.Now()
	return nil
}

// Complete marks the order as fulfilled
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidTransition
	}
	o.Status = StatusCompleted
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel sets the order to cancelled unconditionally. Cancelling an order
// that is already cancelled or otherwise terminal is a no-op overwrite, not
// an error, so redelivered cancellation events are harmless.
func (o *Order) Cancel() {
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now()
}
