package integration

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ListingPush describes one item to create or update on the marketplace.
// Prices are integer minor units with an explicit currency code.
type ListingPush struct {
	// ProviderItemID is the local/provider identity, kept for error reporting
	ProviderItemID string
	// MarketplaceItemID is the existing listing ID (empty → create)
	MarketplaceItemID string
	Name              string
	Description       string
	PriceMinor        int64
	Currency          string
	ImageURL          string
	Category          string
}

// Validate validates the listing push
func (p *ListingPush) Validate() error {
	if p.Name == "" {
		return errors.New("integration: listing title is required")
	}
	if p.PriceMinor < 0 {
		return errors.New("integration: listing price cannot be negative")
	}
	return nil
}

// TokenGrant is the result of an OAuth token exchange or refresh
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Marketplace is the port for the delivery marketplace platform
type Marketplace interface {
	// PushItem creates or updates one listing, keyed by whether
	// MarketplaceItemID is set, and returns the (possibly new) listing ID
	PushItem(ctx context.Context, tenantID uuid.UUID, push *ListingPush) (string, error)

	// SetItemPaused pauses or unpauses a listing by its marketplace ID
	SetItemPaused(ctx context.Context, tenantID uuid.UUID, marketplaceItemID string, paused bool) error
}

// MarketplaceAuthorizer is the port for the marketplace OAuth flow
type MarketplaceAuthorizer interface {
	// AuthorizeURL builds the user-facing authorization URL; state carries
	// the tenant ID through the redirect
	AuthorizeURL(ctx context.Context, tenantID uuid.UUID) (string, error)

	// ExchangeAuthCode redeems an authorization code and persists the
	// resulting token grant for the tenant
	ExchangeAuthCode(ctx context.Context, tenantID uuid.UUID, code string) (*TokenGrant, error)
}
