package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/application/dashboard"
)

// DashboardHandler exposes the aggregated dashboard statistics
type DashboardHandler struct {
	BaseHandler
	service *dashboard.Service
	logger  *zap.Logger
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(service *dashboard.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{service: service, logger: logger}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/stats", h.Stats)
}

type dayBucketResponse struct {
	Date   string `json:"date"`
	Orders int    `json:"orders"`
}

type syncLogResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Outcome     string    `json:"outcome"`
	ItemsSynced int       `json:"items_synced"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type statsResponse struct {
	TotalItems   int64               `json:"total_items"`
	SyncedItems  int64               `json:"synced_items"`
	TotalOrders  int64               `json:"total_orders"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	OrderTrend   []dayBucketResponse `json:"order_trend"`
	RecentSyncs  []syncLogResponse   `json:"recent_syncs"`
}

// Stats returns item and order counts, lifetime revenue, the seven-day order
// trend, and the latest sync outcomes
func (h *DashboardHandler) Stats(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "tenant not resolved")
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to compute dashboard stats", zap.Error(err))
		h.InternalError(c, "failed to compute stats")
		return
	}

	trend := make([]dayBucketResponse, len(stats.OrderTrend))
	for i, bucket := range stats.OrderTrend {
		trend[i] = dayBucketResponse{Date: bucket.Date, Orders: bucket.Orders}
	}
	syncs := make([]syncLogResponse, len(stats.RecentSyncs))
	for i, entry := range stats.RecentSyncs {
		syncs[i] = syncLogResponse{
			ID:          entry.ID.String(),
			Type:        entry.Type.String(),
			Outcome:     entry.Outcome.String(),
			ItemsSynced: entry.ItemsSynced,
			Message:     entry.Message,
			CreatedAt:   entry.CreatedAt,
		}
	}

	h.Success(c, statsResponse{
		TotalItems:   stats.TotalItems,
		SyncedItems:  stats.SyncedItems,
		TotalOrders:  stats.TotalOrders,
		TotalRevenue: stats.TotalRevenue,
		OrderTrend:   trend,
		RecentSyncs:  syncs,
	})
}
