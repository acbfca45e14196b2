package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menubridge/backend/internal/domain/audit"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/order"
)

type fakeItemCounts struct {
	total  int64
	synced int64
}

func (r *fakeItemCounts) Save(_ context.Context, _ *menu.MenuItem) error { return nil }

func (r *fakeItemCounts) FindByID(_ context.Context, _, _ uuid.UUID) (*menu.MenuItem, error) {
	return nil, menu.ErrItemNotFound
}

func (r *fakeItemCounts) FindByIDs(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]*menu.MenuItem, error) {
	return nil, nil
}

func (r *fakeItemCounts) FindByProviderItemID(_ context.Context, _ uuid.UUID, _ string) (*menu.MenuItem, error) {
	return nil, menu.ErrItemNotFound
}

func (r *fakeItemCounts) ListByTenant(_ context.Context, _ uuid.UUID) ([]*menu.MenuItem, error) {
	return nil, nil
}

func (r *fakeItemCounts) CountByTenant(_ context.Context, _ uuid.UUID) (int64, error) {
	return r.total, nil
}

func (r *fakeItemCounts) CountSynced(_ context.Context, _ uuid.UUID) (int64, error) {
	return r.synced, nil
}

type fakeOrderStats struct {
	orders []*order.Order
}

func (r *fakeOrderStats) Create(_ context.Context, _ *order.Order) error { return nil }
func (r *fakeOrderStats) Update(_ context.Context, _ *order.Order) error { return nil }

func (r *fakeOrderStats) FindByMarketplaceOrderID(_ context.Context, _ uuid.UUID, _ string) (*order.Order, error) {
	return nil, order.ErrOrderNotFound
}

func (r *fakeOrderStats) ListRecent(_ context.Context, _ uuid.UUID, limit int) ([]*order.Order, error) {
	if len(r.orders) > limit {
		return r.orders[:limit], nil
	}
	return r.orders, nil
}

func (r *fakeOrderStats) ListCreatedSince(_ context.Context, _ uuid.UUID, since time.Time) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.orders {
		if !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderStats) CountByTenant(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(r.orders)), nil
}

func (r *fakeOrderStats) SumTotalAmount(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range r.orders {
		sum = sum.Add(o.TotalAmount)
	}
	return sum, nil
}

type fakeSyncLogs struct {
	entries []*audit.SyncLogEntry
}

func (r *fakeSyncLogs) Append(_ context.Context, e *audit.SyncLogEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeSyncLogs) ListRecent(_ context.Context, _ uuid.UUID, limit int) ([]*audit.SyncLogEntry, error) {
	if len(r.entries) > limit {
		return r.entries[:limit], nil
	}
	return r.entries, nil
}

func orderAt(t *testing.T, tenantID uuid.UUID, id string, total float64, createdAt time.Time) *order.Order {
	t.Helper()
	o, err := order.NewOrder(tenantID, id, "Alex", decimal.NewFromFloat(total), "{}", nil)
	require.NoError(t, err)
	o.CreatedAt = createdAt
	return o
}

func TestStats(t *testing.T) {
	tenantID := uuid.New()
	now := time.Now()

	t.Run("aggregates counts, revenue, and trend", func(t *testing.T) {
		orders := &fakeOrderStats{orders: []*order.Order{
			orderAt(t, tenantID, "mp-1", 25.00, now),
			orderAt(t, tenantID, "mp-2", 10.50, now),
			orderAt(t, tenantID, "mp-3", 8.00, now.AddDate(0, 0, -2)),
		}}
		syncLogs := &fakeSyncLogs{}
		entry, err := audit.NewSyncLogEntry(tenantID, audit.SyncTypeMenuPull, audit.OutcomeSuccess, 4, audit.PullSummaryMessage(4))
		require.NoError(t, err)
		require.NoError(t, syncLogs.Append(context.Background(), entry))

		svc := NewService(&fakeItemCounts{total: 12, synced: 9}, orders, syncLogs, nil)

		stats, err := svc.Stats(context.Background(), tenantID)
		require.NoError(t, err)

		assert.Equal(t, int64(12), stats.TotalItems)
		assert.Equal(t, int64(9), stats.SyncedItems)
		assert.Equal(t, int64(3), stats.TotalOrders)
		assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromFloat(43.50)), "got %s", stats.TotalRevenue)
		require.Len(t, stats.RecentSyncs, 1)
		assert.Equal(t, audit.SyncTypeMenuPull, stats.RecentSyncs[0].Type)

		// Seven buckets, oldest first, zero-filled
		require.Len(t, stats.OrderTrend, 7)
		assert.Equal(t, now.AddDate(0, 0, -6).Format("2006-01-02"), stats.OrderTrend[0].Date)
		assert.Equal(t, now.Format("2006-01-02"), stats.OrderTrend[6].Date)
		assert.Equal(t, 2, stats.OrderTrend[6].Orders)
		assert.Equal(t, 1, stats.OrderTrend[4].Orders)
		assert.Equal(t, 0, stats.OrderTrend[0].Orders)
	})

	t.Run("empty tenant yields zeroed stats", func(t *testing.T) {
		svc := NewService(&fakeItemCounts{}, &fakeOrderStats{}, &fakeSyncLogs{}, nil)

		stats, err := svc.Stats(context.Background(), tenantID)
		require.NoError(t, err)

		assert.Zero(t, stats.TotalItems)
		assert.Zero(t, stats.TotalOrders)
		assert.True(t, stats.TotalRevenue.Equal(decimal.Zero))
		assert.Len(t, stats.OrderTrend, 7)
		for _, b := range stats.OrderTrend {
			assert.Zero(t, b.Orders)
		}
		assert.Empty(t, stats.RecentSyncs)
	})
}
