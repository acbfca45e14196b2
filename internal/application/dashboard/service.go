package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/domain/audit"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/order"
)

// trendDays is the length of the daily order trend window
const trendDays = 7

// recentSyncLimit caps the sync history shown on the dashboard
const recentSyncLimit = 10

// DayBucket is one day of order counts in the trend window
type DayBucket struct {
	Date   string
	Orders int
}

// Stats is the dashboard summary for one tenant
type Stats struct {
	TotalItems   int64
	SyncedItems  int64
	TotalOrders  int64
	TotalRevenue decimal.Decimal
	OrderTrend   []DayBucket
	RecentSyncs  []*audit.SyncLogEntry
}

// Service aggregates read-only dashboard statistics
type Service struct {
	items    menu.MenuItemRepository
	orders   order.OrderRepository
	syncLogs audit.SyncLogRepository
	logger   *zap.Logger
}

// NewService creates a dashboard service
func NewService(items menu.MenuItemRepository, orders order.OrderRepository, syncLogs audit.SyncLogRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{items: items, orders: orders, syncLogs: syncLogs, logger: logger}
}

// Stats computes item and order counts, lifetime revenue, and a seven-day
// order trend bucketed by calendar day (local time), oldest day first. Days
// with no orders appear with a zero count.
func (s *Service) Stats(ctx context.Context, tenantID uuid.UUID) (*Stats, error) {
	totalItems, err := s.items.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	syncedItems, err := s.items.CountSynced(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.orders.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.SumTotalAmount(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	trend, err := s.orderTrend(ctx, tenantID, time.Now())
	if err != nil {
		return nil, err
	}

	recentSyncs, err := s.syncLogs.ListRecent(ctx, tenantID, recentSyncLimit)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalItems:   totalItems,
		SyncedItems:  syncedItems,
		TotalOrders:  totalOrders,
		TotalRevenue: revenue,
		OrderTrend:   trend,
		RecentSyncs:  recentSyncs,
	}, nil
}

func (s *Service) orderTrend(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]DayBucket, error) {
	windowStart := now.AddDate(0, 0, -(trendDays - 1))
	dayStart := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, now.Location())

	recent, err := s.orders.ListCreatedSince(ctx, tenantID, dayStart)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, trendDays)
	for _, o := range recent {
		counts[o.CreatedAt.In(now.Location()).Format("2006-01-02")]++
	}

	trend := make([]DayBucket, 0, trendDays)
	for d := 0; d < trendDays; d++ {
		day := dayStart.AddDate(0, 0, d).Format("2006-01-02")
		trend = append(trend, DayBucket{Date: day, Orders: counts[day]})
	}
	return trend, nil
}
