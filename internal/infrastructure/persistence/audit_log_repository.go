package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/menubridge/backend/internal/domain/audit"
	"github.com/menubridge/backend/internal/infrastructure/persistence/models"
)

// GormWebhookLogRepository implements WebhookLogRepository using GORM
type GormWebhookLogRepository struct {
	db *gorm.DB
}

// NewGormWebhookLogRepository creates a new GormWebhookLogRepository
func NewGormWebhookLogRepository(db *gorm.DB) *GormWebhookLogRepository {
	return &GormWebhookLogRepository{db: db}
}

// Append inserts a new entry
func (r *GormWebhookLogRepository) Append(ctx context.Context, e *audit.WebhookLogEntry) error {
	model := models.WebhookLogModelFromDomain(e)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists the processed flag and error text of an entry
func (r *GormWebhookLogRepository) Update(ctx context.Context, e *audit.WebhookLogEntry) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookLogModel{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"processed": e.Processed,
			"error":     e.Error,
		}).Error
}

// ListRecent returns the latest entries, newest first
func (r *GormWebhookLogRepository) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*audit.WebhookLogEntry, error) {
	var logModels []models.WebhookLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("received_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*audit.WebhookLogEntry, len(logModels))
	for i := range logModels {
		entries[i] = logModels[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormWebhookLogRepository implements WebhookLogRepository
var _ audit.WebhookLogRepository = (*GormWebhookLogRepository)(nil)

// GormSyncLogRepository implements SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append inserts a new entry
func (r *GormSyncLogRepository) Append(ctx context.Context, e *audit.SyncLogEntry) error {
	model := models.SyncLogModelFromDomain(e)
	return r.db.WithContext(ctx).Create(model).Error
}

// ListRecent returns the latest entries, newest first
func (r *GormSyncLogRepository) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*audit.SyncLogEntry, error) {
	var logModels []models.SyncLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*audit.SyncLogEntry, len(logModels))
	for i := range logModels {
		entries[i] = logModels[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormSyncLogRepository implements SyncLogRepository
var _ audit.SyncLogRepository = (*GormSyncLogRepository)(nil)
