package tenant

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menubridge/backend/internal/domain/menu"
)

func TestNewSettings(t *testing.T) {
	t.Run("creates settings with defaults", func(t *testing.T) {
		tenantID := uuid.New()
		s, err := NewSettings(tenantID)
		require.NoError(t, err)

		assert.Equal(t, tenantID, s.TenantID)
		assert.Equal(t, EnvironmentSandbox, s.ProviderEnvironment)
		assert.Equal(t, menu.MarkupKindPercent, s.GlobalMarkupKind)
		assert.True(t, s.GlobalMarkupValue.Equal(decimal.NewFromInt(30)))
		assert.True(t, s.AutoPauseOnStockout)
		assert.False(t, s.SyncHours)
		assert.False(t, s.SyncImages)
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewSettings(uuid.Nil)
		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})
}

func TestGlobalPolicy(t *testing.T) {
	t.Run("returns configured policy", func(t *testing.T) {
		s, err := NewSettings(uuid.New())
		require.NoError(t, err)
		s.GlobalMarkupKind = menu.MarkupKindFixed
		s.GlobalMarkupValue = decimal.NewFromFloat(2.50)

		p := s.GlobalPolicy()
		assert.Equal(t, menu.MarkupKindFixed, p.Kind)
		assert.True(t, p.Value.Equal(decimal.NewFromFloat(2.50)))
	})

	t.Run("falls back to default on invalid kind", func(t *testing.T) {
		s, err := NewSettings(uuid.New())
		require.NoError(t, err)
		s.GlobalMarkupKind = menu.MarkupKind("bogus")

		p := s.GlobalPolicy()
		assert.Equal(t, menu.MarkupKindPercent, p.Kind)
		assert.True(t, p.Value.Equal(decimal.NewFromInt(30)))
	})
}

func TestMarketplaceTokenValid(t *testing.T) {
	now := time.Now()

	t.Run("valid token outside buffer", func(t *testing.T) {
		s, err := NewSettings(uuid.New())
		require.NoError(t, err)
		expiry := now.Add(time.Hour)
		s.MarketplaceAccessToken = "at-1"
		s.MarketplaceTokenExpiry = &expiry

		assert.True(t, s.MarketplaceTokenValid(now))
	})

	t.Run("token inside expiry buffer is invalid", func(t *testing.T) {
		s, err := NewSettings(uuid.New())
		require.NoError(t, err)
		expiry := now.Add(TokenExpiryBuffer - time.Minute)
		s.MarketplaceAccessToken = "at-1"
		s.MarketplaceTokenExpiry = &expiry

		assert.False(t, s.MarketplaceTokenValid(now))
	})

	t.Run("missing token or expiry is invalid", func(t *testing.T) {
		s, err := NewSettings(uuid.New())
		require.NoError(t, err)
		assert.False(t, s.MarketplaceTokenValid(now))

		expiry := now.Add(time.Hour)
		s.MarketplaceTokenExpiry = &expiry
		assert.False(t, s.MarketplaceTokenValid(now))
	})
}

func TestApplyTokenGrant(t *testing.T) {
	now := time.Now()

	t.Run("stores access token with computed expiry", func(t *testing.T) {
		s, err := NewSettings(uuid.New())
		require.NoError(t, err)

		s.ApplyTokenGrant("at-1", "rt-1", 3600, now)

		assert.Equal(t, "at-1", s.MarketplaceAccessToken)
		assert.Equal(t, "rt-1", s.MarketplaceRefreshToken)
		require.NotNil(t, s.MarketplaceTokenExpiry)
		assert.True(t, s.MarketplaceTokenExpiry.Equal(now.Add(time.Hour)))
	})

	t.Run("empty refresh token keeps existing one", func(t *testing.T) {
		s, err := NewSettings(uuid.New())
		require.NoError(t, err)
		s.MarketplaceRefreshToken = "rt-original"

		s.ApplyTokenGrant("at-2", "", 3600, now)

		assert.Equal(t, "at-2", s.MarketplaceAccessToken)
		assert.Equal(t, "rt-original", s.MarketplaceRefreshToken)
	})
}

func TestMaskSecret(t *testing.T) {
	t.Run("shows first eight characters", func(t *testing.T) {
		masked := MaskSecret("sq-live-token-1234")
		assert.Equal(t, "sq-live-••••••••", masked)
	})

	t.Run("short secrets are fully hidden", func(t *testing.T) {
		assert.Equal(t, "••••••••", MaskSecret("short"))
		assert.Equal(t, "••••••••", MaskSecret("12345678"))
	})

	t.Run("empty secret stays empty", func(t *testing.T) {
		assert.Empty(t, MaskSecret(""))
	})
}

func TestIsMasked(t *testing.T) {
	assert.True(t, IsMasked(MaskSecret("sq-live-token-1234")))
	assert.True(t, IsMasked("abc••••def"))
	assert.False(t, IsMasked("sq-live-token-1234"))
	assert.False(t, IsMasked(""))
}

func TestHasProviderCredentials(t *testing.T) {
	s, err := NewSettings(uuid.New())
	require.NoError(t, err)
	assert.False(t, s.HasProviderCredentials())

	s.ProviderAccessToken = "sq-token"
	assert.True(t, s.HasProviderCredentials())
}
