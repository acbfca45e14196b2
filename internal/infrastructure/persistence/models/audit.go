package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/menubridge/backend/internal/domain/audit"
)

// WebhookLogModel is the persistence model for the webhook ingress log
type WebhookLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_webhook_logs_tenant,priority:1"`
	Source     string    `gorm:"type:varchar(20);not null"`
	EventType  string    `gorm:"type:varchar(100)"`
	Payload    string    `gorm:"type:jsonb"`
	Processed  bool      `gorm:"not null;default:false"`
	Error      string    `gorm:"type:text"`
	ReceivedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WebhookLogModel) TableName() string {
	return "webhook_logs"
}

// ToDomain converts the persistence model to a domain WebhookLogEntry.
func (m *WebhookLogModel) ToDomain() *audit.WebhookLogEntry {
	return &audit.WebhookLogEntry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Source:     audit.WebhookSource(m.Source),
		EventType:  m.EventType,
		Payload:    m.Payload,
		Processed:  m.Processed,
		Error:      m.Error,
		ReceivedAt: m.ReceivedAt,
	}
}

// FromDomain populates the persistence model from a domain WebhookLogEntry.
func (m *WebhookLogModel) FromDomain(e *audit.WebhookLogEntry) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.Source = e.Source.String()
	m.EventType = e.EventType
	m.Payload = e.Payload
	m.Processed = e.Processed
	m.Error = e.Error
	m.ReceivedAt = e.ReceivedAt
}

// WebhookLogModelFromDomain creates a new persistence model from a domain WebhookLogEntry.
func WebhookLogModelFromDomain(e *audit.WebhookLogEntry) *WebhookLogModel {
	m := &WebhookLogModel{}
	m.FromDomain(e)
	return m
}

// SyncLogModel is the persistence model for sync outcome records
type SyncLogModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index:idx_sync_logs_tenant,priority:1"`
	Type        string    `gorm:"type:varchar(20);not null"`
	Outcome     string    `gorm:"type:varchar(20);not null"`
	ItemsSynced int       `gorm:"not null;default:0"`
	Message     string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLogEntry.
func (m *SyncLogModel) ToDomain() *audit.SyncLogEntry {
	return &audit.SyncLogEntry{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Type:        audit.SyncType(m.Type),
		Outcome:     audit.SyncOutcome(m.Outcome),
		ItemsSynced: m.ItemsSynced,
		Message:     m.Message,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain SyncLogEntry.
func (m *SyncLogModel) FromDomain(e *audit.SyncLogEntry) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.Type = e.Type.String()
	m.Outcome = e.Outcome.String()
	m.ItemsSynced = e.ItemsSynced
	m.Message = e.Message
	m.CreatedAt = e.CreatedAt
}

// SyncLogModelFromDomain creates a new persistence model from a domain SyncLogEntry.
func SyncLogModelFromDomain(e *audit.SyncLogEntry) *SyncLogModel {
	m := &SyncLogModel{}
	m.FromDomain(e)
	return m
}
