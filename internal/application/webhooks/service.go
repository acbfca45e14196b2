package webhooks

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/application/availability"
	"github.com/menubridge/backend/internal/application/orders"
	"github.com/menubridge/backend/internal/domain/audit"
	"github.com/menubridge/backend/internal/domain/integration"
	"github.com/menubridge/backend/internal/domain/shared"
)

// Service is the webhook ingress pipeline. Every verified event is logged
// before any business logic runs, deduplicated by event ID, dispatched to the
// owning service, and its log entry updated with the outcome.
type Service struct {
	logs         audit.WebhookLogRepository
	idempotency  shared.IdempotencyStore
	idemCfg      shared.IdempotencyConfig
	orders       *orders.Service
	availability *availability.Service
	logger       *zap.Logger
}

// NewService creates a webhook ingress service
func NewService(
	logs audit.WebhookLogRepository,
	idempotency shared.IdempotencyStore,
	idemCfg shared.IdempotencyConfig,
	orderSvc *orders.Service,
	availabilitySvc *availability.Service,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logs:         logs,
		idempotency:  idempotency,
		idemCfg:      idemCfg,
		orders:       orderSvc,
		availability: availabilitySvc,
		logger:       logger,
	}
}

// HandleOrderEvent ingests a verified marketplace order event. Processing
// errors are recorded on the log entry and swallowed so the caller can still
// acknowledge the delivery.
func (s *Service) HandleOrderEvent(ctx context.Context, evt *integration.OrderEvent) error {
	entry, err := s.appendLog(ctx, evt.TenantID, audit.SourceMarketplace, evt.EventType, evt.RawPayload)
	if err != nil {
		return err
	}

	if dup, err := s.alreadySeen(ctx, evt.EventID); err == nil && dup {
		s.finishLog(ctx, entry, nil)
		s.logger.Info("duplicate webhook event dropped",
			zap.String("event_id", evt.EventID),
			zap.String("event_type", evt.EventType),
		)
		return nil
	}

	var handleErr error
	switch evt.Kind {
	case integration.OrderEventPlaced:
		handleErr = s.orders.HandlePlaced(ctx, evt)
	case integration.OrderEventCancelled:
		handleErr = s.orders.HandleCancelled(ctx, evt)
	default:
		s.logger.Info("unhandled marketplace event type ignored",
			zap.String("event_type", evt.EventType),
		)
	}

	s.finishLog(ctx, entry, handleErr)
	if handleErr != nil {
		s.logger.Error("order event processing failed",
			zap.String("event_id", evt.EventID),
			zap.String("event_type", evt.EventType),
			zap.Error(handleErr),
		)
	}
	return nil
}

// HandleStockEvent ingests a verified provider inventory event
func (s *Service) HandleStockEvent(ctx context.Context, evt *integration.StockEvent, rawPayload string) error {
	entry, err := s.appendLog(ctx, evt.TenantID, audit.SourceProvider, evt.EventType, rawPayload)
	if err != nil {
		return err
	}

	if dup, err := s.alreadySeen(ctx, evt.EventID); err == nil && dup {
		s.finishLog(ctx, entry, nil)
		return nil
	}

	handleErr := s.availability.HandleStockEvent(ctx, evt)
	s.finishLog(ctx, entry, handleErr)
	if handleErr != nil {
		s.logger.Error("stock event processing failed",
			zap.String("event_id", evt.EventID),
			zap.Error(handleErr),
		)
	}
	return nil
}

// LogUnhandled records an event type the ingress does not act on. The log is
// the operator's view of everything the platforms sent, acted on or not.
func (s *Service) LogUnhandled(ctx context.Context, tenantID uuid.UUID, source audit.WebhookSource, eventType, rawPayload string) error {
	entry, err := s.appendLog(ctx, tenantID, source, eventType, rawPayload)
	if err != nil {
		return err
	}
	s.finishLog(ctx, entry, nil)
	return nil
}

// ListRecent returns the latest ingress log entries, newest first
func (s *Service) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*audit.WebhookLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.logs.ListRecent(ctx, tenantID, limit)
}

func (s *Service) appendLog(ctx context.Context, tenantID uuid.UUID, source audit.WebhookSource, eventType, payload string) (*audit.WebhookLogEntry, error) {
	entry, err := audit.NewWebhookLogEntry(tenantID, source, eventType, payload)
	if err != nil {
		return nil, err
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) finishLog(ctx context.Context, entry *audit.WebhookLogEntry, handleErr error) {
	entry.MarkProcessed(handleErr)
	if err := s.logs.Update(ctx, entry); err != nil {
		s.logger.Error("failed to update webhook log entry", zap.Error(err))
	}
}

// alreadySeen marks the event ID and reports whether it was seen before.
// Store failures degrade to processing the event; redelivery is preferable to
// silent loss.
func (s *Service) alreadySeen(ctx context.Context, eventID string) (bool, error) {
	if !s.idemCfg.Enabled || eventID == "" || s.idempotency == nil {
		return false, nil
	}
	fresh, err := s.idempotency.MarkProcessed(ctx, eventID, s.idemCfg.TTL)
	if err != nil {
		s.logger.Warn("idempotency store unavailable", zap.Error(err))
		return false, nil
	}
	return !fresh, nil
}
