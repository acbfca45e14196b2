package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/application/webhooks"
	"github.com/menubridge/backend/internal/domain/audit"
	"github.com/menubridge/backend/internal/infrastructure/marketplace/uber"
	"github.com/menubridge/backend/internal/infrastructure/pos/square"
	"github.com/menubridge/backend/internal/interfaces/http/dto"
)

// WebhookVerification holds the shared secrets used to verify inbound
// webhooks. An empty secret disables verification for that source.
type WebhookVerification struct {
	// SquareSignatureKey signs provider stock webhooks
	SquareSignatureKey string
	// SquareNotificationURL is the exact subscription URL, part of the
	// provider's signed content
	SquareNotificationURL string
	// UberSecret signs marketplace order webhooks
	UberSecret string
}

// WebhookHandler receives platform webhooks and the ingress log listing
type WebhookHandler struct {
	BaseHandler
	service      *webhooks.Service
	verification WebhookVerification
	logger       *zap.Logger
}

// NewWebhookHandler creates a webhook handler
func NewWebhookHandler(service *webhooks.Service, verification WebhookVerification, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{service: service, verification: verification, logger: logger}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/webhooks")
	{
		group.POST("/square", h.HandleSquare)
		group.POST("/uber", h.HandleUber)
		group.GET("/logs", h.ListLogs)
	}
}

// HandleSquare receives provider stock webhooks. Once the delivery is logged
// the endpoint acknowledges with 200 regardless of processing outcome, so the
// platform does not retry events we have already recorded.
func (h *WebhookHandler) HandleSquare(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}

	if h.verification.SquareSignatureKey != "" {
		signature := c.GetHeader(square.SignatureHeader)
		if err := square.VerifySignature(h.verification.SquareSignatureKey, h.verification.SquareNotificationURL, body, signature); err != nil {
			h.Unauthorized(c, dto.ErrCodeInvalidSignature, "invalid webhook signature")
			return
		}
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	evt, err := square.ParseStockEvent(tenantID, body)
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "malformed webhook payload")
		return
	}

	if evt.EventType != square.EventTypeInventoryCountUpdated {
		if err := h.service.LogUnhandled(c.Request.Context(), tenantID, audit.SourceProvider, evt.EventType, string(body)); err != nil {
			h.InternalError(c, "failed to record webhook")
			return
		}
		h.Success(c, gin.H{"ok": true})
		return
	}

	if err := h.service.HandleStockEvent(c.Request.Context(), evt, string(body)); err != nil {
		h.InternalError(c, "failed to record webhook")
		return
	}
	h.Success(c, gin.H{"ok": true})
}

// HandleUber receives marketplace order webhooks
func (h *WebhookHandler) HandleUber(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}

	if h.verification.UberSecret != "" {
		signature := c.GetHeader(uber.SignatureHeader)
		if err := uber.VerifySignature(h.verification.UberSecret, body, signature); err != nil {
			h.Unauthorized(c, dto.ErrCodeInvalidSignature, "invalid webhook signature")
			return
		}
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	evt, err := uber.ParseOrderEvent(tenantID, body)
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "malformed webhook payload")
		return
	}

	if err := h.service.HandleOrderEvent(c.Request.Context(), evt); err != nil {
		h.InternalError(c, "failed to record webhook")
		return
	}
	h.Success(c, gin.H{"ok": true})
}

// webhookLogResponse is the display form of one ingress log entry
type webhookLogResponse struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	EventType  string    `json:"event_type"`
	Processed  bool      `json:"processed"`
	Error      string    `json:"error,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// ListLogs returns the latest webhook log entries, newest first
func (h *WebhookHandler) ListLogs(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := h.service.ListRecent(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.InternalError(c, "failed to list webhook logs")
		return
	}

	responses := make([]webhookLogResponse, len(entries))
	for i, entry := range entries {
		responses[i] = webhookLogResponse{
			ID:         entry.ID.String(),
			Source:     entry.Source.String(),
			EventType:  entry.EventType,
			Processed:  entry.Processed,
			Error:      entry.Error,
			ReceivedAt: entry.ReceivedAt,
		}
	}
	h.Success(c, responses)
}
