package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/application/catalog"
	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/tenant"
	"github.com/menubridge/backend/internal/interfaces/http/dto"
)

// MenuHandler exposes catalog reconciliation, publishing, and item edits
type MenuHandler struct {
	BaseHandler
	service *catalog.Service
	logger  *zap.Logger
}

// NewMenuHandler creates a menu handler
func NewMenuHandler(service *catalog.Service, logger *zap.Logger) *MenuHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuHandler{service: service, logger: logger}
}

// RegisterRoutes registers menu routes
func (h *MenuHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/menu")
	{
		group.POST("/pull", h.Pull)
		group.POST("/publish", h.Publish)
		group.GET("/items", h.ListItems)
		group.PATCH("/items/:id/price", h.UpdatePrice)
	}
}

// menuItemResponse is the display form of one menu item
type menuItemResponse struct {
	ID                string           `json:"id"`
	ProviderItemID    string           `json:"provider_item_id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	BasePrice         decimal.Decimal  `json:"base_price"`
	ImageURL          string           `json:"image_url,omitempty"`
	Category          string           `json:"category,omitempty"`
	Available         bool             `json:"available"`
	MarketplaceItemID string           `json:"marketplace_item_id,omitempty"`
	Synced            bool             `json:"synced"`
	LastSyncedAt      *time.Time       `json:"last_synced_at,omitempty"`
	PriceMode         string           `json:"price_mode"`
	MarkupKind        string           `json:"markup_kind,omitempty"`
	MarkupValue       *decimal.Decimal `json:"markup_value,omitempty"`
	AdjustedPrice     *decimal.Decimal `json:"adjusted_price,omitempty"`
}

func toMenuItemResponse(item *menu.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:                item.ID.String(),
		ProviderItemID:    item.ProviderItemID,
		Name:              item.Name,
		Description:       item.Description,
		BasePrice:         item.BasePrice,
		ImageURL:          item.ImageURL,
		Category:          item.Category,
		Available:         item.Available,
		MarketplaceItemID: item.MarketplaceItemID,
		Synced:            item.Synced,
		LastSyncedAt:      item.LastSyncedAt,
		PriceMode:         item.PriceMode.String(),
		AdjustedPrice:     item.AdjustedPrice,
	}
	if item.ItemMarkup != nil {
		resp.MarkupKind = item.ItemMarkup.Kind.String()
		value := item.ItemMarkup.Value
		resp.MarkupValue = &value
	}
	return resp
}

// Pull reconciles the local catalog from the provider
func (h *MenuHandler) Pull(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	count, err := h.service.PullCatalog(c.Request.Context(), tenantID)
	if err != nil {
		h.menuError(c, err)
		return
	}
	h.Success(c, gin.H{"pulled": count})
}

// publishRequest selects the items to push; the optional markup override
// replaces the stored global policy for this batch only
type publishRequest struct {
	ItemIDs     []string         `json:"item_ids" binding:"required"`
	MarkupKind  *string          `json:"markup_kind"`
	MarkupValue *decimal.Decimal `json:"markup_value"`
}

// Publish pushes the selected items to the marketplace
func (h *MenuHandler) Publish(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "invalid request body: "+err.Error())
		return
	}

	itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		itemID, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, 400, dto.ErrCodeInvalidInput, "invalid item ID: "+raw)
			return
		}
		itemIDs = append(itemIDs, itemID)
	}

	var globalPolicy *menu.MarkupPolicy
	if req.MarkupKind != nil && req.MarkupValue != nil {
		policy, err := menu.NewMarkupPolicy(menu.MarkupKind(*req.MarkupKind), *req.MarkupValue)
		if err != nil {
			h.Error(c, 400, dto.ErrCodeInvalidInput, err.Error())
			return
		}
		globalPolicy = &policy
	}

	result, err := h.service.Publish(c.Request.Context(), tenantID, itemIDs, globalPolicy)
	if err != nil {
		h.menuError(c, err)
		return
	}

	h.Success(c, gin.H{
		"synced":  result.Synced,
		"errors":  result.Errors,
		"outcome": result.Outcome.String(),
	})
}

// ListItems returns the tenant's items sorted by name
func (h *MenuHandler) ListItems(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), tenantID)
	if err != nil {
		h.menuError(c, err)
		return
	}

	responses := make([]menuItemResponse, len(items))
	for i, item := range items {
		responses[i] = toMenuItemResponse(item)
	}
	h.SuccessWithMeta(c, responses, int64(len(responses)), len(responses))
}

// updatePriceRequest switches an item between pricing modes.
// MANUAL requires a price; AUTOMATIC with a markup pair sets an item-level
// policy, without one it clears any override.
type updatePriceRequest struct {
	Mode        string           `json:"mode" binding:"required,oneof=AUTOMATIC MANUAL"`
	Price       *decimal.Decimal `json:"price"`
	MarkupKind  *string          `json:"markup_kind"`
	MarkupValue *decimal.Decimal `json:"markup_value"`
}

// UpdatePrice edits one item's pricing override
func (h *MenuHandler) UpdatePrice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "invalid item ID")
		return
	}

	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	switch menu.PriceMode(req.Mode) {
	case menu.PriceModeManual:
		if req.Price == nil {
			h.Error(c, 400, dto.ErrCodeInvalidInput, "manual mode requires a price")
			return
		}
		err = h.service.SetManualPrice(ctx, tenantID, itemID, req.Price)
	case menu.PriceModeAutomatic:
		if req.MarkupKind != nil && req.MarkupValue != nil {
			policy, perr := menu.NewMarkupPolicy(menu.MarkupKind(*req.MarkupKind), *req.MarkupValue)
			if perr != nil {
				h.Error(c, 400, dto.ErrCodeInvalidInput, perr.Error())
				return
			}
			err = h.service.SetItemMarkup(ctx, tenantID, itemID, policy)
		} else {
			err = h.service.SetManualPrice(ctx, tenantID, itemID, nil)
		}
	}
	if err != nil {
		h.menuError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": true})
}

// menuError maps catalog service errors onto API error codes
func (h *MenuHandler) menuError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, menu.ErrItemNotFound):
		h.NotFound(c, "menu item not found")
	case errors.Is(err, catalog.ErrNoItemsSelected):
		h.Error(c, 400, dto.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, tenant.ErrNoProviderToken),
		errors.Is(err, tenant.ErrSettingsNotFound),
		errors.Is(err, integration.ErrPlatformNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodePlatformNotConfigured, err.Error())
	case errors.Is(err, integration.ErrPlatformRequestFailed),
		errors.Is(err, integration.ErrPlatformAuthFailed),
		errors.Is(err, integration.ErrPlatformInvalidResponse),
		errors.Is(err, integration.ErrTokenRefreshFailed):
		h.ErrorWithCode(c, dto.ErrCodePlatformFailed, err.Error())
	default:
		h.logger.Error("menu operation failed", zap.Error(err))
		h.InternalError(c, "operation failed")
	}
}
