package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/tenant"
)

// View is the masked, display-safe projection of a tenant's settings.
// Secrets never leave the service unmasked.
type View struct {
	ProviderAccessToken     string
	ProviderLocationID      string
	ProviderEnvironment     string
	MarketplaceClientID     string
	MarketplaceClientSecret string
	MarketplaceStoreID      string
	MarketplaceConnected    bool
	GlobalMarkupKind        string
	GlobalMarkupValue       decimal.Decimal
	AutoPauseOnStockout     bool
	SyncHours               bool
	SyncImages              bool
}

// UpdateRequest carries the writable settings fields. Secret fields holding a
// masked display value are ignored so that a round-tripped form submit never
// destroys stored credentials. Nil pointers leave the stored value untouched.
type UpdateRequest struct {
	ProviderAccessToken     *string
	ProviderLocationID      *string
	ProviderEnvironment     *string
	MarketplaceClientID     *string
	MarketplaceClientSecret *string
	MarketplaceStoreID      *string
	GlobalMarkupKind        *string
	GlobalMarkupValue       *decimal.Decimal
	AutoPauseOnStockout     *bool
	SyncHours               *bool
	SyncImages              *bool
}

// ConnectionStatus is the result of a provider connection test
type ConnectionStatus struct {
	Connected    bool
	LocationName string
	BusinessName string
	Error        string
}

// Service manages tenant settings and the marketplace OAuth linkage
type Service struct {
	settings   tenant.SettingsRepository
	pos        integration.POSProvider
	authorizer integration.MarketplaceAuthorizer
	logger     *zap.Logger
}

// NewService creates a settings service
func NewService(
	settings tenant.SettingsRepository,
	pos integration.POSProvider,
	authorizer integration.MarketplaceAuthorizer,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{settings: settings, pos: pos, authorizer: authorizer, logger: logger}
}

// Get returns the masked settings view for a tenant, creating a default row
// on first access
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID) (*View, error) {
	st, err := s.loadOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return maskedView(st), nil
}

// Update applies the writable fields and returns the refreshed masked view.
// Masked secret values are skipped, not stored.
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, req *UpdateRequest) (*View, error) {
	st, err := s.loadOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	applySecret(req.ProviderAccessToken, &st.ProviderAccessToken)
	applySecret(req.MarketplaceClientSecret, &st.MarketplaceClientSecret)
	applyString(req.ProviderLocationID, &st.ProviderLocationID)
	applyString(req.MarketplaceClientID, &st.MarketplaceClientID)
	applyString(req.MarketplaceStoreID, &st.MarketplaceStoreID)

	if req.ProviderEnvironment != nil {
		env := tenant.ProviderEnvironment(*req.ProviderEnvironment)
		if env != tenant.EnvironmentSandbox && env != tenant.EnvironmentProduction {
			return nil, errors.New("settings: unknown provider environment")
		}
		st.ProviderEnvironment = env
	}

	if req.GlobalMarkupKind != nil || req.GlobalMarkupValue != nil {
		kind := st.GlobalMarkupKind
		value := st.GlobalMarkupValue
		if req.GlobalMarkupKind != nil {
			kind = menu.MarkupKind(*req.GlobalMarkupKind)
		}
		if req.GlobalMarkupValue != nil {
			value = *req.GlobalMarkupValue
		}
		policy, err := menu.NewMarkupPolicy(kind, value)
		if err != nil {
			return nil, err
		}
		st.GlobalMarkupKind = policy.Kind
		st.GlobalMarkupValue = policy.Value
	}

	if req.AutoPauseOnStockout != nil {
		st.AutoPauseOnStockout = *req.AutoPauseOnStockout
	}
	if req.SyncHours != nil {
		st.SyncHours = *req.SyncHours
	}
	if req.SyncImages != nil {
		st.SyncImages = *req.SyncImages
	}

	st.UpdatedAt = time.Now()
	if err := s.settings.Save(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info("settings updated", zap.String("tenant_id", tenantID.String()))
	return maskedView(st), nil
}

// TestProviderConnection verifies the stored provider credentials by fetching
// the configured location. Upstream failures are reported in the status, not
// returned as errors.
func (s *Service) TestProviderConnection(ctx context.Context, tenantID uuid.UUID) (*ConnectionStatus, error) {
	st, err := s.loadOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !st.HasProviderCredentials() {
		return &ConnectionStatus{Connected: false, Error: tenant.ErrNoProviderToken.Error()}, nil
	}

	loc, err := s.pos.RetrieveLocation(ctx, tenantID)
	if err != nil {
		return &ConnectionStatus{Connected: false, Error: err.Error()}, nil
	}
	return &ConnectionStatus{
		Connected:    true,
		LocationName: loc.Name,
		BusinessName: loc.BusinessName,
	}, nil
}

// ConnectURL builds the marketplace OAuth authorization URL for a tenant
func (s *Service) ConnectURL(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if _, err := s.loadOrCreate(ctx, tenantID); err != nil {
		return "", err
	}
	return s.authorizer.AuthorizeURL(ctx, tenantID)
}

// CompleteConnect redeems the OAuth callback code and stores the token grant
func (s *Service) CompleteConnect(ctx context.Context, tenantID uuid.UUID, code string) error {
	if code == "" {
		return errors.New("settings: authorization code is required")
	}
	st, err := s.loadOrCreate(ctx, tenantID)
	if err != nil {
		return err
	}

	grant, err := s.authorizer.ExchangeAuthCode(ctx, tenantID, code)
	if err != nil {
		return err
	}

	st.ApplyTokenGrant(grant.AccessToken, grant.RefreshToken, grant.ExpiresIn, time.Now())
	if err := s.settings.Save(ctx, st); err != nil {
		return err
	}

	s.logger.Info("marketplace connected", zap.String("tenant_id", tenantID.String()))
	return nil
}

func (s *Service) loadOrCreate(ctx context.Context, tenantID uuid.UUID) (*tenant.Settings, error) {
	st, err := s.settings.FindByTenant(ctx, tenantID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, tenant.ErrSettingsNotFound) {
		return nil, err
	}

	st, err = tenant.NewSettings(tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.settings.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func maskedView(st *tenant.Settings) *View {
	return &View{
		ProviderAccessToken:     tenant.MaskSecret(st.ProviderAccessToken),
		ProviderLocationID:      st.ProviderLocationID,
		ProviderEnvironment:     string(st.ProviderEnvironment),
		MarketplaceClientID:     st.MarketplaceClientID,
		MarketplaceClientSecret: tenant.MaskSecret(st.MarketplaceClientSecret),
		MarketplaceStoreID:      st.MarketplaceStoreID,
		MarketplaceConnected:    st.MarketplaceTokenValid(time.Now()),
		GlobalMarkupKind:        st.GlobalMarkupKind.String(),
		GlobalMarkupValue:       st.GlobalMarkupValue,
		AutoPauseOnStockout:     st.AutoPauseOnStockout,
		SyncHours:               st.SyncHours,
		SyncImages:              st.SyncImages,
	}
}

// applySecret stores a submitted secret unless it is empty or still masked
func applySecret(submitted *string, target *string) {
	if submitted == nil || *submitted == "" || tenant.IsMasked(*submitted) {
		return
	}
	*target = *submitted
}

func applyString(submitted *string, target *string) {
	if submitted == nil {
		return
	}
	*target = *submitted
}
