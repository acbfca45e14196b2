package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/application/settings"
	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/tenant"
	"github.com/menubridge/backend/internal/interfaces/http/dto"
)

// SettingsHandler exposes tenant settings, the provider connection test, and
// the marketplace OAuth flow
type SettingsHandler struct {
	BaseHandler
	service *settings.Service
	logger  *zap.Logger
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(service *settings.Service, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{service: service, logger: logger}
}

// RegisterRoutes registers settings and OAuth routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/settings")
	{
		group.GET("", h.Get)
		group.PUT("", h.Update)
		group.GET("/square/test", h.TestConnection)
	}

	oauth := rg.Group("/uber")
	{
		oauth.GET("/connect", h.Connect)
		oauth.GET("/callback", h.Callback)
	}
}

// settingsResponse is the masked display form of tenant settings
type settingsResponse struct {
	ProviderAccessToken     string          `json:"provider_access_token"`
	ProviderLocationID      string          `json:"provider_location_id"`
	ProviderEnvironment     string          `json:"provider_environment"`
	MarketplaceClientID     string          `json:"marketplace_client_id"`
	MarketplaceClientSecret string          `json:"marketplace_client_secret"`
	MarketplaceStoreID      string          `json:"marketplace_store_id"`
	MarketplaceConnected    bool            `json:"marketplace_connected"`
	GlobalMarkupKind        string          `json:"global_markup_kind"`
	GlobalMarkupValue       decimal.Decimal `json:"global_markup_value"`
	AutoPauseOnStockout     bool            `json:"auto_pause_on_stockout"`
	SyncHours               bool            `json:"sync_hours"`
	SyncImages              bool            `json:"sync_images"`
}

func toSettingsResponse(view *settings.View) settingsResponse {
	return settingsResponse{
		ProviderAccessToken:     view.ProviderAccessToken,
		ProviderLocationID:      view.ProviderLocationID,
		ProviderEnvironment:     view.ProviderEnvironment,
		MarketplaceClientID:     view.MarketplaceClientID,
		MarketplaceClientSecret: view.MarketplaceClientSecret,
		MarketplaceStoreID:      view.MarketplaceStoreID,
		MarketplaceConnected:    view.MarketplaceConnected,
		GlobalMarkupKind:        view.GlobalMarkupKind,
		GlobalMarkupValue:       view.GlobalMarkupValue,
		AutoPauseOnStockout:     view.AutoPauseOnStockout,
		SyncHours:               view.SyncHours,
		SyncImages:              view.SyncImages,
	}
}

// Get returns the tenant's settings with secrets masked
func (h *SettingsHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	view, err := h.service.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.settingsError(c, err)
		return
	}
	h.Success(c, toSettingsResponse(view))
}

// updateSettingsRequest carries the writable settings fields; omitted fields
// stay untouched, masked secret values are ignored by the service
type updateSettingsRequest struct {
	ProviderAccessToken     *string          `json:"provider_access_token"`
	ProviderLocationID      *string          `json:"provider_location_id"`
	ProviderEnvironment     *string          `json:"provider_environment" binding:"omitempty,oneof=sandbox production"`
	MarketplaceClientID     *string          `json:"marketplace_client_id"`
	MarketplaceClientSecret *string          `json:"marketplace_client_secret"`
	MarketplaceStoreID      *string          `json:"marketplace_store_id"`
	GlobalMarkupKind        *string          `json:"global_markup_kind" binding:"omitempty,oneof=PERCENT FIXED"`
	GlobalMarkupValue       *decimal.Decimal `json:"global_markup_value"`
	AutoPauseOnStockout     *bool            `json:"auto_pause_on_stockout"`
	SyncHours               *bool            `json:"sync_hours"`
	SyncImages              *bool            `json:"sync_images"`
}

// Update applies a partial settings edit and returns the refreshed view
func (h *SettingsHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "invalid request body: "+err.Error())
		return
	}

	view, err := h.service.Update(c.Request.Context(), tenantID, &settings.UpdateRequest{
		ProviderAccessToken:     req.ProviderAccessToken,
		ProviderLocationID:      req.ProviderLocationID,
		ProviderEnvironment:     req.ProviderEnvironment,
		MarketplaceClientID:     req.MarketplaceClientID,
		MarketplaceClientSecret: req.MarketplaceClientSecret,
		MarketplaceStoreID:      req.MarketplaceStoreID,
		GlobalMarkupKind:        req.GlobalMarkupKind,
		GlobalMarkupValue:       req.GlobalMarkupValue,
		AutoPauseOnStockout:     req.AutoPauseOnStockout,
		SyncHours:               req.SyncHours,
		SyncImages:              req.SyncImages,
	})
	if err != nil {
		h.settingsError(c, err)
		return
	}
	h.Success(c, toSettingsResponse(view))
}

// TestConnection checks the stored provider credentials by retrieving the
// configured location. Upstream failures come back in the status body, not
// as transport errors.
func (h *SettingsHandler) TestConnection(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	status, err := h.service.TestProviderConnection(c.Request.Context(), tenantID)
	if err != nil {
		h.settingsError(c, err)
		return
	}
	h.Success(c, gin.H{
		"connected":     status.Connected,
		"location_name": status.LocationName,
		"business_name": status.BusinessName,
		"error":         status.Error,
	})
}

// Connect returns the marketplace authorization URL to redirect the user to
func (h *SettingsHandler) Connect(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	authorizeURL, err := h.service.ConnectURL(c.Request.Context(), tenantID)
	if err != nil {
		h.settingsError(c, err)
		return
	}
	h.Success(c, gin.H{"url": authorizeURL})
}

// Callback completes the OAuth flow with the authorization code. The tenant
// comes back in the state parameter; the resolved request tenant is used as
// fallback for older redirects without state.
func (h *SettingsHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "missing authorization code")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}
	if state := c.Query("state"); state != "" {
		if parsed, perr := uuid.Parse(state); perr == nil {
			tenantID = parsed
		}
	}

	if err := h.service.CompleteConnect(c.Request.Context(), tenantID, code); err != nil {
		h.settingsError(c, err)
		return
	}
	h.Success(c, gin.H{"connected": true})
}

// settingsError maps settings service errors onto API error codes
func (h *SettingsHandler) settingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tenant.ErrNoMarketplaceClient),
		errors.Is(err, tenant.ErrNoProviderToken),
		errors.Is(err, integration.ErrPlatformNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodePlatformNotConfigured, err.Error())
	case errors.Is(err, integration.ErrPlatformAuthFailed),
		errors.Is(err, integration.ErrPlatformRequestFailed),
		errors.Is(err, integration.ErrPlatformInvalidResponse):
		h.ErrorWithCode(c, dto.ErrCodePlatformFailed, err.Error())
	case errors.Is(err, menu.ErrInvalidMarkupKind),
		errors.Is(err, menu.ErrNegativeBasePrice):
		h.Error(c, 400, dto.ErrCodeInvalidInput, err.Error())
	default:
		h.logger.Error("settings operation failed", zap.Error(err))
		h.InternalError(c, "operation failed")
	}
}
