package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menubridge/backend/internal/domain/audit"
	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/tenant"
)

type fakeItemRepo struct {
	byID         map[uuid.UUID]*menu.MenuItem
	byProviderID map[string]*menu.MenuItem
	saveErr      error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		byID:         make(map[uuid.UUID]*menu.MenuItem),
		byProviderID: make(map[string]*menu.MenuItem),
	}
}

func (r *fakeItemRepo) Save(_ context.Context, item *menu.MenuItem) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byID[item.ID] = item
	r.byProviderID[item.ProviderItemID] = item
	return nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*menu.MenuItem, error) {
	item, ok := r.byID[id]
	if !ok {
		return nil, menu.ErrItemNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindByIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]*menu.MenuItem, error) {
	var items []*menu.MenuItem
	for _, id := range ids {
		if item, ok := r.byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *fakeItemRepo) FindByProviderItemID(_ context.Context, _ uuid.UUID, providerItemID string) (*menu.MenuItem, error) {
	item, ok := r.byProviderID[providerItemID]
	if !ok {
		return nil, menu.ErrItemNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) ListByTenant(_ context.Context, _ uuid.UUID) ([]*menu.MenuItem, error) {
	items := make([]*menu.MenuItem, 0, len(r.byID))
	for _, item := range r.byID {
		items = append(items, item)
	}
	return items, nil
}

func (r *fakeItemRepo) CountByTenant(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(r.byID)), nil
}

func (r *fakeItemRepo) CountSynced(_ context.Context, _ uuid.UUID) (int64, error) {
	var n int64
	for _, item := range r.byID {
		if item.Synced {
			n++
		}
	}
	return n, nil
}

type fakeSettingsRepo struct {
	settings *tenant.Settings
}

func (r *fakeSettingsRepo) Save(_ context.Context, s *tenant.Settings) error {
	r.settings = s
	return nil
}

func (r *fakeSettingsRepo) FindByTenant(_ context.Context, tenantID uuid.UUID) (*tenant.Settings, error) {
	if r.settings == nil || r.settings.TenantID != tenantID {
		return nil, tenant.ErrSettingsNotFound
	}
	return r.settings, nil
}

type fakePOS struct {
	snapshots []integration.CatalogItemSnapshot
	pullErr   error
	pullCalls int
}

func (p *fakePOS) PullCatalog(_ context.Context, _ uuid.UUID) ([]integration.CatalogItemSnapshot, error) {
	p.pullCalls++
	if p.pullErr != nil {
		return nil, p.pullErr
	}
	return p.snapshots, nil
}

func (p *fakePOS) CreateOrder(_ context.Context, _ *integration.ProviderOrderRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (p *fakePOS) RetrieveLocation(_ context.Context, _ uuid.UUID) (*integration.LocationInfo, error) {
	return nil, errors.New("not implemented")
}

type fakeMarketplace struct {
	failFor map[string]error // keyed by provider item ID
	pushed  []*integration.ListingPush
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{failFor: make(map[string]error)}
}

func (m *fakeMarketplace) PushItem(_ context.Context, _ uuid.UUID, push *integration.ListingPush) (string, error) {
	if err, ok := m.failFor[push.ProviderItemID]; ok {
		return "", err
	}
	m.pushed = append(m.pushed, push)
	if push.MarketplaceItemID != "" {
		return push.MarketplaceItemID, nil
	}
	return "mp-" + push.ProviderItemID, nil
}

func (m *fakeMarketplace) SetItemPaused(_ context.Context, _ uuid.UUID, _ string, _ bool) error {
	return nil
}

type fakeSyncLogs struct {
	entries []*audit.SyncLogEntry
}

func (r *fakeSyncLogs) Append(_ context.Context, e *audit.SyncLogEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeSyncLogs) ListRecent(_ context.Context, _ uuid.UUID, _ int) ([]*audit.SyncLogEntry, error) {
	return r.entries, nil
}

func (r *fakeSyncLogs) last(t *testing.T) *audit.SyncLogEntry {
	t.Helper()
	require.NotEmpty(t, r.entries)
	return r.entries[len(r.entries)-1]
}

type fixture struct {
	tenantID uuid.UUID
	items    *fakeItemRepo
	settings *fakeSettingsRepo
	pos      *fakePOS
	market   *fakeMarketplace
	syncLogs *fakeSyncLogs
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tenantID := uuid.New()

	settings, err := tenant.NewSettings(tenantID)
	require.NoError(t, err)
	settings.ProviderAccessToken = "sq-test-token"

	f := &fixture{
		tenantID: tenantID,
		items:    newFakeItemRepo(),
		settings: &fakeSettingsRepo{settings: settings},
		pos:      &fakePOS{},
		market:   newFakeMarketplace(),
		syncLogs: &fakeSyncLogs{},
	}
	f.svc = NewService(f.items, f.settings, f.pos, f.market, f.syncLogs, nil)
	return f
}

func (f *fixture) seedItem(t *testing.T, providerItemID, name string, basePrice float64) *menu.MenuItem {
	t.Helper()
	item, err := menu.NewMenuItem(f.tenantID, menu.ProviderSnapshot{
		ProviderItemID: providerItemID,
		Name:           name,
		BasePrice:      decimal.NewFromFloat(basePrice),
		Available:      true,
	})
	require.NoError(t, err)
	require.NoError(t, f.items.Save(context.Background(), item))
	return item
}

func snapshot(providerItemID, name string, basePrice float64) integration.CatalogItemSnapshot {
	return integration.CatalogItemSnapshot{
		ProviderItemID: providerItemID,
		Name:           name,
		BasePrice:      decimal.NewFromFloat(basePrice),
		Available:      true,
	}
}

func TestPullCatalog(t *testing.T) {
	t.Run("creates items from provider snapshots", func(t *testing.T) {
		f := newFixture(t)
		f.pos.snapshots = []integration.CatalogItemSnapshot{
			snapshot("ITEM_1", "Cheeseburger", 10.00),
			snapshot("ITEM_2", "Fries", 4.50),
		}

		count, err := f.svc.PullCatalog(context.Background(), f.tenantID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Len(t, f.items.byProviderID, 2)

		entry := f.syncLogs.last(t)
		assert.Equal(t, audit.SyncTypeMenuPull, entry.Type)
		assert.Equal(t, audit.OutcomeSuccess, entry.Outcome)
		assert.Equal(t, 2, entry.ItemsSynced)
		assert.Equal(t, audit.PullSummaryMessage(2), entry.Message)
	})

	t.Run("re-pull preserves override and linkage", func(t *testing.T) {
		f := newFixture(t)
		item := f.seedItem(t, "ITEM_1", "Cheeseburger", 10.00)
		item.SetManualPrice(decimal.NewFromFloat(17.77))
		item.MarkPublished("mp-ITEM_1", decimal.NewFromFloat(13.00), item.CreatedAt)

		f.pos.snapshots = []integration.CatalogItemSnapshot{
			snapshot("ITEM_1", "Double Cheeseburger", 11.00),
		}
		count, err := f.svc.PullCatalog(context.Background(), f.tenantID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		refreshed := f.items.byProviderID["ITEM_1"]
		assert.Equal(t, "Double Cheeseburger", refreshed.Name)
		assert.True(t, decimal.NewFromFloat(11.00).Equal(refreshed.BasePrice))
		assert.Equal(t, menu.PriceModeManual, refreshed.PriceMode)
		assert.Equal(t, "mp-ITEM_1", refreshed.MarketplaceItemID)
		assert.True(t, refreshed.Synced)
	})

	t.Run("missing provider credentials fail fast", func(t *testing.T) {
		f := newFixture(t)
		f.settings.settings.ProviderAccessToken = ""

		_, err := f.svc.PullCatalog(context.Background(), f.tenantID)
		assert.ErrorIs(t, err, tenant.ErrNoProviderToken)
		assert.Zero(t, f.pos.pullCalls)
		assert.Equal(t, audit.OutcomeFailed, f.syncLogs.last(t).Outcome)
	})

	t.Run("provider failure is recorded", func(t *testing.T) {
		f := newFixture(t)
		f.pos.pullErr = errors.New("square unavailable")

		_, err := f.svc.PullCatalog(context.Background(), f.tenantID)
		require.Error(t, err)

		entry := f.syncLogs.last(t)
		assert.Equal(t, audit.OutcomeFailed, entry.Outcome)
		assert.Equal(t, "square unavailable", entry.Message)
	})

	t.Run("mid-pull save failure keeps prior upserts", func(t *testing.T) {
		f := newFixture(t)
		f.pos.snapshots = []integration.CatalogItemSnapshot{
			snapshot("ITEM_1", "Cheeseburger", 10.00),
			snapshot("ITEM_2", "Fries", 4.50),
		}
		// First save succeeds, then the repository goes down
		saved := 0
		f.svc = NewService(&failingAfterRepo{inner: f.items, allow: 1, saved: &saved}, f.settings, f.pos, f.market, f.syncLogs, nil)

		count, err := f.svc.PullCatalog(context.Background(), f.tenantID)
		require.Error(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, saved)
		assert.Equal(t, audit.OutcomeFailed, f.syncLogs.last(t).Outcome)
	})
}

// failingAfterRepo lets a fixed number of saves through, then fails
type failingAfterRepo struct {
	inner *fakeItemRepo
	allow int
	saved *int
}

func (r *failingAfterRepo) Save(ctx context.Context, item *menu.MenuItem) error {
	if *r.saved >= r.allow {
		return errors.New("storage unavailable")
	}
	*r.saved++
	return r.inner.Save(ctx, item)
}

func (r *failingAfterRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*menu.MenuItem, error) {
	return r.inner.FindByID(ctx, tenantID, id)
}

func (r *failingAfterRepo) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*menu.MenuItem, error) {
	return r.inner.FindByIDs(ctx, tenantID, ids)
}

func (r *failingAfterRepo) FindByProviderItemID(ctx context.Context, tenantID uuid.UUID, providerItemID string) (*menu.MenuItem, error) {
	return r.inner.FindByProviderItemID(ctx, tenantID, providerItemID)
}

func (r *failingAfterRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*menu.MenuItem, error) {
	return r.inner.ListByTenant(ctx, tenantID)
}

func (r *failingAfterRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return r.inner.CountByTenant(ctx, tenantID)
}

func (r *failingAfterRepo) CountSynced(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return r.inner.CountSynced(ctx, tenantID)
}

func TestPublish(t *testing.T) {
	t.Run("one failing item yields a partial batch", func(t *testing.T) {
		f := newFixture(t)
		burger := f.seedItem(t, "ITEM_1", "Cheeseburger", 10.00)
		fries := f.seedItem(t, "ITEM_2", "Fries", 4.50)
		shake := f.seedItem(t, "ITEM_3", "Milkshake", 6.00)
		f.market.failFor["ITEM_2"] = errors.New("marketplace rejected listing")

		result, err := f.svc.Publish(context.Background(), f.tenantID,
			[]uuid.UUID{burger.ID, fries.ID, shake.ID}, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Synced)
		assert.Equal(t, audit.OutcomePartial, result.Outcome)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "Fries: marketplace rejected listing", result.Errors[0])

		// Successes are linked, the failure is untouched
		assert.Equal(t, "mp-ITEM_1", burger.MarketplaceItemID)
		assert.True(t, burger.Synced)
		assert.Equal(t, "mp-ITEM_3", shake.MarketplaceItemID)
		assert.True(t, shake.Synced)
		assert.Empty(t, fries.MarketplaceItemID)
		assert.False(t, fries.Synced)

		entry := f.syncLogs.last(t)
		assert.Equal(t, audit.SyncTypeMenuPush, entry.Type)
		assert.Equal(t, audit.OutcomePartial, entry.Outcome)
		assert.Equal(t, 2, entry.ItemsSynced)
		assert.Equal(t, "Fries: marketplace rejected listing", entry.Message)
	})

	t.Run("full success records a success log", func(t *testing.T) {
		f := newFixture(t)
		burger := f.seedItem(t, "ITEM_1", "Cheeseburger", 10.00)

		result, err := f.svc.Publish(context.Background(), f.tenantID, []uuid.UUID{burger.ID}, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Synced)
		assert.Equal(t, audit.OutcomeSuccess, result.Outcome)
		assert.Empty(t, result.Errors)

		// Default global policy is 30 percent: 10.00 -> 13.00 -> 1300 minor
		require.Len(t, f.market.pushed, 1)
		assert.Equal(t, int64(1300), f.market.pushed[0].PriceMinor)

		entry := f.syncLogs.last(t)
		assert.Equal(t, audit.OutcomeSuccess, entry.Outcome)
		assert.Equal(t, audit.PushSummaryMessage(1), entry.Message)
	})

	t.Run("every item failing records a failed log", func(t *testing.T) {
		f := newFixture(t)
		burger := f.seedItem(t, "ITEM_1", "Cheeseburger", 10.00)
		f.market.failFor["ITEM_1"] = errors.New("unauthorized")

		result, err := f.svc.Publish(context.Background(), f.tenantID, []uuid.UUID{burger.ID}, nil)
		require.NoError(t, err)

		assert.Zero(t, result.Synced)
		assert.Equal(t, audit.OutcomeFailed, result.Outcome)
		assert.Equal(t, audit.OutcomeFailed, f.syncLogs.last(t).Outcome)
	})

	t.Run("caller policy overrides the stored one", func(t *testing.T) {
		f := newFixture(t)
		burger := f.seedItem(t, "ITEM_1", "Cheeseburger", 10.00)

		policy := menu.MarkupPolicy{Kind: menu.MarkupKindFixed, Value: decimal.NewFromFloat(2.50)}
		_, err := f.svc.Publish(context.Background(), f.tenantID, []uuid.UUID{burger.ID}, &policy)
		require.NoError(t, err)

		require.Len(t, f.market.pushed, 1)
		assert.Equal(t, int64(1250), f.market.pushed[0].PriceMinor)
	})

	t.Run("empty selection is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Publish(context.Background(), f.tenantID, nil, nil)
		assert.ErrorIs(t, err, ErrNoItemsSelected)
	})
}

func TestSetManualPrice(t *testing.T) {
	t.Run("sets and clears the override", func(t *testing.T) {
		f := newFixture(t)
		burger := f.seedItem(t, "ITEM_1", "Cheeseburger", 10.00)

		price := decimal.NewFromFloat(15.555)
		require.NoError(t, f.svc.SetManualPrice(context.Background(), f.tenantID, burger.ID, &price))
		assert.Equal(t, menu.PriceModeManual, burger.PriceMode)

		require.NoError(t, f.svc.SetManualPrice(context.Background(), f.tenantID, burger.ID, nil))
		assert.Equal(t, menu.PriceModeAutomatic, burger.PriceMode)
	})

	t.Run("unknown item returns not found", func(t *testing.T) {
		f := newFixture(t)
		price := decimal.NewFromFloat(9.99)
		err := f.svc.SetManualPrice(context.Background(), f.tenantID, uuid.New(), &price)
		assert.ErrorIs(t, err, menu.ErrItemNotFound)
	})
}
