package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/domain/audit"
	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/tenant"
)

// Service errors
var (
	ErrNoItemsSelected = errors.New("catalog: no items selected for publish")
)

// PublishResult is returned to the caller after a publish batch. The sync log
// entry is the durable record; this is for immediate display.
type PublishResult struct {
	Synced  int
	Errors  []string
	Outcome audit.SyncOutcome
}

// Service implements catalog reconciliation (provider → local) and publish
// orchestration (local → marketplace)
type Service struct {
	items       menu.MenuItemRepository
	settings    tenant.SettingsRepository
	pos         integration.POSProvider
	marketplace integration.Marketplace
	syncLogs    audit.SyncLogRepository
	logger      *zap.Logger
}

// NewService creates a catalog service
func NewService(
	items menu.MenuItemRepository,
	settings tenant.SettingsRepository,
	pos integration.POSProvider,
	marketplace integration.Marketplace,
	syncLogs audit.SyncLogRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		items:       items,
		settings:    settings,
		pos:         pos,
		marketplace: marketplace,
		syncLogs:    syncLogs,
		logger:      logger,
	}
}

// ---------------------------------------------------------------------------
// Catalog pull (reconciliation)
// ---------------------------------------------------------------------------

// PullCatalog retrieves the full provider catalog and upserts it into local
// storage keyed by provider item ID. Provider-sourced fields are overwritten;
// markup and marketplace-linkage fields are preserved. Returns the number of
// items upserted.
//
// A mid-pull failure aborts the operation; upserts already issued remain
// (at-least-once partial application, tolerated by callers).
func (s *Service) PullCatalog(ctx context.Context, tenantID uuid.UUID) (int, error) {
	settings, err := s.settings.FindByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if !settings.HasProviderCredentials() {
		s.appendSyncLog(ctx, tenantID, audit.SyncTypeMenuPull, audit.OutcomeFailed, 0, tenant.ErrNoProviderToken.Error())
		return 0, tenant.ErrNoProviderToken
	}

	snapshots, err := s.pos.PullCatalog(ctx, tenantID)
	if err != nil {
		s.appendSyncLog(ctx, tenantID, audit.SyncTypeMenuPull, audit.OutcomeFailed, 0, err.Error())
		return 0, err
	}

	count := 0
	for _, snap := range snapshots {
		if err := s.upsertItem(ctx, tenantID, snap); err != nil {
			s.appendSyncLog(ctx, tenantID, audit.SyncTypeMenuPull, audit.OutcomeFailed, count, err.Error())
			return count, err
		}
		count++
	}

	s.appendSyncLog(ctx, tenantID, audit.SyncTypeMenuPull, audit.OutcomeSuccess, count, audit.PullSummaryMessage(count))
	s.logger.Info("catalog pull completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("items", count),
	)
	return count, nil
}

// upsertItem creates a new item or refreshes the provider-sourced fields of
// an existing one
func (s *Service) upsertItem(ctx context.Context, tenantID uuid.UUID, snap integration.CatalogItemSnapshot) error {
	domainSnap := menu.ProviderSnapshot{
		ProviderItemID: snap.ProviderItemID,
		Name:           snap.Name,
		Description:    snap.Description,
		BasePrice:      snap.BasePrice,
		ImageURL:       snap.ImageURL,
		Category:       snap.Category,
		Available:      snap.Available,
	}

	existing, err := s.items.FindByProviderItemID(ctx, tenantID, snap.ProviderItemID)
	switch {
	case err == nil:
		existing.ApplyProviderSnapshot(domainSnap)
		return s.items.Save(ctx, existing)
	case errors.Is(err, menu.ErrItemNotFound):
		item, err := menu.NewMenuItem(tenantID, domainSnap)
		if err != nil {
			return err
		}
		return s.items.Save(ctx, item)
	default:
		return err
	}
}

// ---------------------------------------------------------------------------
// Publish (orchestration)
// ---------------------------------------------------------------------------

// Publish pushes the selected items to the marketplace. Each item is priced
// by the precedence rules (manual override, item markup, global policy),
// converted to minor units, and created or updated independently; a per-item
// failure never aborts the batch. One SyncLogEntry summarizes the outcome.
//
// globalPolicy overrides the tenant's stored policy when non-nil (the
// dashboard sends the policy currently shown in the UI).
func (s *Service) Publish(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID, globalPolicy *menu.MarkupPolicy) (*PublishResult, error) {
	if len(itemIDs) == 0 {
		return nil, ErrNoItemsSelected
	}

	settings, err := s.settings.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	global := settings.GlobalPolicy()
	if globalPolicy != nil {
		if err := globalPolicy.Validate(); err != nil {
			return nil, err
		}
		global = *globalPolicy
	}

	items, err := s.items.FindByIDs(ctx, tenantID, itemIDs)
	if err != nil {
		return nil, err
	}

	synced := 0
	var pushErrors []string
	for _, item := range items {
		if err := s.publishOne(ctx, tenantID, item, global); err != nil {
			pushErrors = append(pushErrors, fmt.Sprintf("%s: %s", item.Name, err.Error()))
			continue
		}
		synced++
	}

	outcome := audit.OutcomeFor(synced, len(pushErrors))
	message := audit.PushSummaryMessage(synced)
	if len(pushErrors) > 0 {
		message = strings.Join(pushErrors, "; ")
	}
	s.appendSyncLog(ctx, tenantID, audit.SyncTypeMenuPush, outcome, synced, message)

	s.logger.Info("publish batch completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("synced", synced),
		zap.Int("failed", len(pushErrors)),
		zap.String("outcome", outcome.String()),
	)

	return &PublishResult{Synced: synced, Errors: pushErrors, Outcome: outcome}, nil
}

// publishOne resolves the effective price for one item and pushes it
func (s *Service) publishOne(ctx context.Context, tenantID uuid.UUID, item *menu.MenuItem, global menu.MarkupPolicy) error {
	price, err := item.EffectivePrice(global)
	if err != nil {
		return err
	}

	push := &integration.ListingPush{
		ProviderItemID:    item.ProviderItemID,
		MarketplaceItemID: item.MarketplaceItemID,
		Name:              item.Name,
		Description:       item.Description,
		PriceMinor:        menu.ToMinorUnits(price),
		ImageURL:          item.ImageURL,
		Category:          item.Category,
	}
	marketplaceItemID, err := s.marketplace.PushItem(ctx, tenantID, push)
	if err != nil {
		return err
	}

	item.MarkPublished(marketplaceItemID, price, time.Now())
	return s.items.Save(ctx, item)
}

// ---------------------------------------------------------------------------
// Item listing and markup edits
// ---------------------------------------------------------------------------

// ListItems returns the tenant's items sorted by name
func (s *Service) ListItems(ctx context.Context, tenantID uuid.UUID) ([]*menu.MenuItem, error) {
	return s.items.ListByTenant(ctx, tenantID)
}

// SetManualPrice sets an exact operator price for one item, or clears the
// override back to automatic pricing when price is nil
func (s *Service) SetManualPrice(ctx context.Context, tenantID, itemID uuid.UUID, price *decimal.Decimal) error {
	item, err := s.items.FindByID(ctx, tenantID, itemID)
	if err != nil {
		return err
	}
	if price != nil {
		item.SetManualPrice(*price)
	} else {
		item.ClearPriceOverride()
	}
	return s.items.Save(ctx, item)
}

// SetItemMarkup gives one item its own markup policy
func (s *Service) SetItemMarkup(ctx context.Context, tenantID, itemID uuid.UUID, policy menu.MarkupPolicy) error {
	item, err := s.items.FindByID(ctx, tenantID, itemID)
	if err != nil {
		return err
	}
	if err := item.SetItemMarkup(policy); err != nil {
		return err
	}
	return s.items.Save(ctx, item)
}

// appendSyncLog writes the durable sync record; failures are logged, never
// propagated, so they cannot mask the operation's own result
func (s *Service) appendSyncLog(ctx context.Context, tenantID uuid.UUID, syncType audit.SyncType, outcome audit.SyncOutcome, count int, message string) {
	entry, err := audit.NewSyncLogEntry(tenantID, syncType, outcome, count, message)
	if err != nil {
		s.logger.Error("failed to build sync log entry", zap.Error(err))
		return
	}
	if err := s.syncLogs.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append sync log entry", zap.Error(err))
	}
}
