package availability

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/tenant"
)

// Service propagates provider stock changes to the marketplace
type Service struct {
	items       menu.MenuItemRepository
	settings    tenant.SettingsRepository
	marketplace integration.Marketplace
	logger      *zap.Logger
}

// NewService creates an availability propagation service
func NewService(
	items menu.MenuItemRepository,
	settings tenant.SettingsRepository,
	marketplace integration.Marketplace,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{items: items, settings: settings, marketplace: marketplace, logger: logger}
}

// HandleStockEvent applies each relevant inventory count to the local item
// and, when the auto-pause toggle is on, mirrors the change to the
// marketplace listing. Counts for unknown or unlinked items are skipped;
// per-count marketplace failures do not stop the remaining counts, but the
// local flag is always persisted so the stored state never depends on the
// marketplace being reachable.
func (s *Service) HandleStockEvent(ctx context.Context, evt *integration.StockEvent) error {
	settings, err := s.settings.FindByTenant(ctx, evt.TenantID)
	if err != nil {
		return err
	}

	for _, count := range evt.Counts {
		if !count.Relevant() {
			continue
		}
		if err := s.applyCount(ctx, settings, count); err != nil {
			s.logger.Warn("stock count not propagated",
				zap.String("tenant_id", evt.TenantID.String()),
				zap.String("provider_item_id", count.ProviderItemID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *Service) applyCount(ctx context.Context, settings *tenant.Settings, count integration.StockCount) error {
	item, err := s.items.FindByProviderItemID(ctx, settings.TenantID, count.ProviderItemID)
	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			return nil
		}
		return err
	}

	available := count.Available()
	item.SetAvailability(available)
	if err := s.items.Save(ctx, item); err != nil {
		return err
	}

	if !settings.AutoPauseOnStockout || !item.IsLinked() || !item.Synced {
		return nil
	}
	if err := s.marketplace.SetItemPaused(ctx, settings.TenantID, item.MarketplaceItemID, !available); err != nil {
		return err
	}

	s.logger.Info("listing availability updated",
		zap.String("tenant_id", settings.TenantID.String()),
		zap.String("provider_item_id", count.ProviderItemID),
		zap.Bool("available", available),
	)
	return nil
}
