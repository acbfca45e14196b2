package integration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Platform errors shared by both ports
var (
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrTokenRefreshFailed      = errors.New("integration: token refresh failed")
	ErrInvalidSignature        = errors.New("integration: invalid webhook signature")
)

// CatalogItemSnapshot is the normalized form of one provider catalog item,
// produced by a full catalog pull with image and category references already
// resolved
type CatalogItemSnapshot struct {
	// ProviderItemID is the stable provider catalog identifier
	ProviderItemID string
	// Name is the display name (may be empty, callers substitute a placeholder)
	Name string
	// Description is the optional item description
	Description string
	// BasePrice is the first price variation, converted from minor units
	BasePrice decimal.Decimal
	// ImageURL is the first associated image, resolved via the image index
	ImageURL string
	// Category is the first associated category name
	Category string
	// Available is the inverse of the provider's deleted flag
	Available bool
}

// ProviderOrderLine is one line of an order to create on the provider
type ProviderOrderLine struct {
	Name           string
	Quantity       int
	UnitPriceMinor int64
}

// ProviderOrderRequest describes an order to materialize on the POS from an
// inbound marketplace order
type ProviderOrderRequest struct {
	TenantID uuid.UUID
	// MarketplaceOrderID correlates the provider order back to its source and
	// seeds the deterministic idempotency key
	MarketplaceOrderID string
	CustomerName       string
	Currency           string
	Lines              []ProviderOrderLine
}

// Validate validates the provider order request
func (r *ProviderOrderRequest) Validate() error {
	if r.TenantID == uuid.Nil {
		return errors.New("integration: invalid tenant ID")
	}
	if r.MarketplaceOrderID == "" {
		return errors.New("integration: marketplace order ID is required")
	}
	if len(r.Lines) == 0 {
		return errors.New("integration: order has no lines")
	}
	return nil
}

// LocationInfo describes the provider location tied to the configured
// credentials, used by the connection test
type LocationInfo struct {
	Name         string
	BusinessName string
}

// POSProvider is the port for the point-of-sale/catalog platform
type POSProvider interface {
	// PullCatalog retrieves the full provider catalog for a tenant,
	// exhausting pagination, with image and category lookups resolved
	PullCatalog(ctx context.Context, tenantID uuid.UUID) ([]CatalogItemSnapshot, error)

	// CreateOrder creates an order on the provider and returns the provider
	// order ID. The call is idempotent per marketplace order ID.
	CreateOrder(ctx context.Context, req *ProviderOrderRequest) (string, error)

	// RetrieveLocation fetches the configured location for a connection test
	RetrieveLocation(ctx context.Context, tenantID uuid.UUID) (*LocationInfo, error)
}
