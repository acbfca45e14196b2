package tenant

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/menubridge/backend/internal/domain/menu"
)

// Settings errors
var (
	ErrInvalidTenantID     = errors.New("tenant: invalid tenant ID")
	ErrSettingsNotFound    = errors.New("tenant: settings not found")
	ErrNoMarketplaceToken  = errors.New("tenant: marketplace not connected")
	ErrNoProviderToken     = errors.New("tenant: provider access token not configured")
	ErrNoProviderLocation  = errors.New("tenant: provider location ID not configured")
	ErrNoMarketplaceStore  = errors.New("tenant: marketplace store ID not configured")
	ErrNoMarketplaceClient = errors.New("tenant: marketplace client credentials not configured")
)

// TokenExpiryBuffer is the safety window before the stored expiry within
// which an access token is treated as already invalid
const TokenExpiryBuffer = 5 * time.Minute

// ProviderEnvironment selects the provider API environment
type ProviderEnvironment string

const (
	// EnvironmentSandbox targets the provider sandbox
	EnvironmentSandbox ProviderEnvironment = "sandbox"
	// EnvironmentProduction targets the provider production API
	EnvironmentProduction ProviderEnvironment = "production"
)

// Settings holds one tenant's credentials, markup policy, and automation
// toggles. One row per tenant.
type Settings struct {
	ID       uuid.UUID
	TenantID uuid.UUID

	// Provider (POS) credentials
	ProviderAccessToken string
	ProviderLocationID  string
	ProviderEnvironment ProviderEnvironment

	// Marketplace credentials
	MarketplaceClientID     string
	MarketplaceClientSecret string
	MarketplaceStoreID      string
	MarketplaceAccessToken  string
	MarketplaceRefreshToken string
	MarketplaceTokenExpiry  *time.Time

	// Global markup policy applied to items without their own override
	GlobalMarkupKind  menu.MarkupKind
	GlobalMarkupValue decimal.Decimal

	// Automation toggles
	AutoPauseOnStockout bool
	SyncHours           bool
	SyncImages          bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSettings creates default settings for a tenant
func NewSettings(tenantID uuid.UUID) (*Settings, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	now := time.Now()
	return &Settings{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		ProviderEnvironment: EnvironmentSandbox,
		GlobalMarkupKind:    menu.MarkupKindPercent,
		GlobalMarkupValue:   decimal.NewFromInt(30),
		AutoPauseOnStockout: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// GlobalPolicy returns the tenant's global markup policy, falling back to the
// system default when unset or invalid
func (s *Settings) GlobalPolicy() menu.MarkupPolicy {
	p := menu.MarkupPolicy{Kind: s.GlobalMarkupKind, Value: s.GlobalMarkupValue}
	if err := p.Validate(); err != nil {
		return menu.DefaultMarkupPolicy()
	}
	return p
}

// HasProviderCredentials reports whether provider calls can be attempted
func (s *Settings) HasProviderCredentials() bool {
	return s.ProviderAccessToken != ""
}

// MarketplaceTokenValid reports whether the stored access token is still
// usable at the given instant, applying the expiry safety buffer
func (s *Settings) MarketplaceTokenValid(now time.Time) bool {
	if s.MarketplaceAccessToken == "" || s.MarketplaceTokenExpiry == nil {
		return false
	}
	return s.MarketplaceTokenExpiry.Add(-TokenExpiryBuffer).After(now)
}

// ApplyTokenGrant stores the result of an OAuth token exchange or refresh.
// A grant that omits the refresh token keeps the existing one.
func (s *Settings) ApplyTokenGrant(accessToken, refreshToken string, expiresIn int, now time.Time) {
	s.MarketplaceAccessToken = accessToken
	if refreshToken != "" {
		s.MarketplaceRefreshToken = refreshToken
	}
	expiry := now.Add(time.Duration(expiresIn) * time.Second)
	s.MarketplaceTokenExpiry = &expiry
	s.UpdatedAt = now
}

// maskRunes hides everything past the first eight characters of a secret
const maskRunes = "••••••••"

// MaskSecret returns a display form of a secret: the first eight characters
// followed by bullets, or empty when unset
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return maskRunes
	}
	return secret[:8] + maskRunes
}

// IsMasked reports whether a submitted value is a masked display form and
// must therefore not overwrite the stored secret
func IsMasked(value string) bool {
	return strings.Contains(value, "••••")
}
