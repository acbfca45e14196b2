package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/application/orders"
	"github.com/menubridge/backend/internal/domain/order"
)

// OrderHandler exposes the bridged order listing
type OrderHandler struct {
	BaseHandler
	service *orders.Service
	logger  *zap.Logger
}

// NewOrderHandler creates an order handler
func NewOrderHandler(service *orders.Service, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{service: service, logger: logger}
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.List)
}

type orderItemResponse struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type orderResponse struct {
	ID                 string              `json:"id"`
	MarketplaceOrderID string              `json:"marketplace_order_id"`
	ProviderOrderID    string              `json:"provider_order_id,omitempty"`
	CustomerName       string              `json:"customer_name"`
	Status             string              `json:"status"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	Items              []orderItemResponse `json:"items"`
	CreatedAt          time.Time           `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return orderResponse{
		ID:                 o.ID.String(),
		MarketplaceOrderID: o.MarketplaceOrderID,
		ProviderOrderID:    o.ProviderOrderID,
		CustomerName:       o.CustomerName,
		Status:             o.Status.String(),
		TotalAmount:        o.TotalAmount,
		Items:              items,
		CreatedAt:          o.CreatedAt,
	}
}

// List returns the latest bridged orders with their line items, newest first
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	list, err := h.service.List(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		h.InternalError(c, "failed to list orders")
		return
	}

	responses := make([]orderResponse, len(list))
	for i, o := range list {
		responses[i] = toOrderResponse(o)
	}
	h.Success(c, responses)
}
