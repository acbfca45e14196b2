package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit errors
var (
	ErrInvalidTenantID = errors.New("audit: invalid tenant ID")
	ErrInvalidSource   = errors.New("audit: invalid webhook source")
)

// ---------------------------------------------------------------------------
// WebhookLogEntry
// ---------------------------------------------------------------------------

// WebhookSource identifies which platform delivered an inbound event
type WebhookSource string

const (
	// SourceProvider is the POS platform
	SourceProvider WebhookSource = "square"
	// SourceMarketplace is the delivery marketplace
	SourceMarketplace WebhookSource = "uber"
)

// IsValid returns true if the source is valid
func (s WebhookSource) IsValid() bool {
	switch s {
	case SourceProvider, SourceMarketplace:
		return true
	default:
		return false
	}
}

// String returns the string representation of WebhookSource
func (s WebhookSource) String() string {
	return string(s)
}

// WebhookLogEntry is an append-only audit record of one inbound webhook.
// It is written before any business logic runs; only the processed flag and
// error text are ever updated afterwards.
type WebhookLogEntry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	Source     WebhookSource
	EventType  string
	Payload    string
	Processed  bool
	Error      string
	ReceivedAt time.Time
}

// NewWebhookLogEntry creates an unprocessed log entry for an inbound event
func NewWebhookLogEntry(tenantID uuid.UUID, source WebhookSource, eventType, payload string) (*WebhookLogEntry, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if !source.IsValid() {
		return nil, ErrInvalidSource
	}
	return &WebhookLogEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Source:     source,
		EventType:  eventType,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}, nil
}

// MarkProcessed flips the processed flag, recording the handler error if any
func (e *WebhookLogEntry) MarkProcessed(err error) {
	e.Processed = true
	if err != nil {
		e.Error = err.Error()
	}
}

// WebhookLogRepository defines persistence for the webhook ingress log
type WebhookLogRepository interface {
	// Append inserts a new entry
	Append(ctx context.Context, e *WebhookLogEntry) error

	// Update persists the processed flag and error text of an entry
	Update(ctx context.Context, e *WebhookLogEntry) error

	// ListRecent returns the latest entries, newest first
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*WebhookLogEntry, error)
}

// ---------------------------------------------------------------------------
// SyncLogEntry
// ---------------------------------------------------------------------------

// SyncType distinguishes catalog pulls from marketplace pushes
type SyncType string

const (
	// SyncTypeMenuPull is a provider catalog reconciliation
	SyncTypeMenuPull SyncType = "MENU_PULL"
	// SyncTypeMenuPush is a marketplace publish batch
	SyncTypeMenuPush SyncType = "MENU_PUSH"
)

// String returns the string representation of SyncType
func (t SyncType) String() string {
	return string(t)
}

// SyncOutcome is the overall result of one sync operation
type SyncOutcome string

const (
	// OutcomeSuccess means every item synced
	OutcomeSuccess SyncOutcome = "SUCCESS"
	// OutcomePartial means some items synced and some failed
	OutcomePartial SyncOutcome = "PARTIAL"
	// OutcomeFailed means no item synced
	OutcomeFailed SyncOutcome = "FAILED"
)

// String returns the string representation of SyncOutcome
func (o SyncOutcome) String() string {
	return string(o)
}

// OutcomeFor derives the outcome from per-item success and failure counts
func OutcomeFor(succeeded, failed int) SyncOutcome {
	switch {
	case failed == 0:
		return OutcomeSuccess
	case succeeded > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

// SyncLogEntry is the append-only durable record of one pull or publish
type SyncLogEntry struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Type        SyncType
	Outcome     SyncOutcome
	ItemsSynced int
	Message     string
	CreatedAt   time.Time
}

// NewSyncLogEntry creates a sync log entry
func NewSyncLogEntry(tenantID uuid.UUID, syncType SyncType, outcome SyncOutcome, itemsSynced int, message string) (*SyncLogEntry, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	return &SyncLogEntry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Type:        syncType,
		Outcome:     outcome,
		ItemsSynced: itemsSynced,
		Message:     message,
		CreatedAt:   time.Now(),
	}, nil
}

// PullSummaryMessage is the human-readable message for a successful pull
func PullSummaryMessage(count int) string {
	return fmt.Sprintf("Pulled %d items from the provider catalog", count)
}

// PushSummaryMessage is the human-readable message for a fully successful publish
func PushSummaryMessage(count int) string {
	return fmt.Sprintf("%d items synced to the marketplace", count)
}

// SyncLogRepository defines persistence for sync outcome records
type SyncLogRepository interface {
	// Append inserts a new entry
	Append(ctx context.Context, e *SyncLogEntry) error

	// ListRecent returns the latest entries, newest first
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*SyncLogEntry, error)
}
