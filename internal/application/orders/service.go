package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/order"
	"github.com/menubridge/backend/internal/domain/shared"
)

// DefaultListLimit caps order listings when the caller does not specify one
const DefaultListLimit = 50

// Service bridges inbound marketplace order events onto the POS provider and
// maintains the local order records
type Service struct {
	orders order.OrderRepository
	pos    integration.POSProvider
	logger *zap.Logger
}

// NewService creates an order bridge service
func NewService(orders order.OrderRepository, pos integration.POSProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, pos: pos, logger: logger}
}

// HandlePlaced records an inbound placed order and forwards it to the POS
// provider. The local record is created before the provider call so a bridge
// failure still leaves an inspectable FAILED order. Duplicate deliveries of
// the same marketplace order are dropped without a second provider call.
//
// Bridge failures are absorbed into the order status, not returned; the
// webhook must still be acknowledged.
func (s *Service) HandlePlaced(ctx context.Context, evt *integration.OrderEvent) error {
	items := make([]order.Item, 0, len(evt.Items))
	for _, it := range evt.Items {
		items = append(items, order.Item{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: menu.FromMinorUnits(it.UnitPriceMinor),
		})
	}

	o, err := order.NewOrder(evt.TenantID, evt.MarketplaceOrderID, evt.CustomerName, menu.FromMinorUnits(evt.TotalMinor), evt.RawPayload, items)
	if err != nil {
		return err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.logger.Info("duplicate order event dropped",
				zap.String("tenant_id", evt.TenantID.String()),
				zap.String("marketplace_order_id", evt.MarketplaceOrderID),
			)
			return nil
		}
		return err
	}

	req := &integration.ProviderOrderRequest{
		TenantID:           evt.TenantID,
		MarketplaceOrderID: evt.MarketplaceOrderID,
		CustomerName:       o.CustomerName,
		Lines:              toProviderLines(evt.Items),
	}
	providerOrderID, err := s.pos.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("order bridge failed",
			zap.String("tenant_id", evt.TenantID.String()),
			zap.String("marketplace_order_id", evt.MarketplaceOrderID),
			zap.Error(err),
		)
		if ferr := o.MarkFailed(); ferr != nil {
			return ferr
		}
		return s.orders.Update(ctx, o)
	}

	if err := o.MarkAccepted(providerOrderID); err != nil {
		return err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return err
	}

	s.logger.Info("order bridged to provider",
		zap.String("tenant_id", evt.TenantID.String()),
		zap.String("marketplace_order_id", evt.MarketplaceOrderID),
		zap.String("provider_order_id", providerOrderID),
	)
	return nil
}

// HandleCancelled transitions an order to cancelled. Cancellation of an
// unknown order is a no-op; cancellation events can outrun their placement.
func (s *Service) HandleCancelled(ctx context.Context, evt *integration.OrderEvent) error {
	o, err := s.orders.FindByMarketplaceOrderID(ctx, evt.TenantID, evt.MarketplaceOrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			s.logger.Warn("cancellation for unknown order ignored",
				zap.String("tenant_id", evt.TenantID.String()),
				zap.String("marketplace_order_id", evt.MarketplaceOrderID),
			)
			return nil
		}
		return err
	}

	o.Cancel()
	if err := s.orders.Update(ctx, o); err != nil {
		return err
	}

	s.logger.Info("order cancelled",
		zap.String("tenant_id", evt.TenantID.String()),
		zap.String("marketplace_order_id", evt.MarketplaceOrderID),
	)
	return nil
}

// List returns the tenant's most recent orders, newest first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.orders.ListRecent(ctx, tenantID, limit)
}

func toProviderLines(items []integration.OrderEventItem) []integration.ProviderOrderLine {
	lines := make([]integration.ProviderOrderLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, integration.ProviderOrderLine{
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceMinor: it.UnitPriceMinor,
		})
	}
	return lines
}
