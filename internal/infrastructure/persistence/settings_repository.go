package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menubridge/backend/internal/domain/tenant"
	"github.com/menubridge/backend/internal/infrastructure/persistence/models"
)

// GormSettingsRepository implements SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Save upserts the settings row for a tenant
func (r *GormSettingsRepository) Save(ctx context.Context, s *tenant.Settings) error {
	model := models.SettingsModelFromDomain(s)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider_access_token",
				"provider_location_id",
				"provider_environment",
				"marketplace_client_id",
				"marketplace_client_secret",
				"marketplace_store_id",
				"marketplace_access_token",
				"marketplace_refresh_token",
				"marketplace_token_expiry",
				"global_markup_kind",
				"global_markup_value",
				"auto_pause_on_stockout",
				"sync_hours",
				"sync_images",
				"updated_at",
			}),
		}).
		Create(model).Error
}

// FindByTenant loads the settings for a tenant
func (r *GormSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*tenant.Settings, error) {
	var model models.SettingsModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenant.ErrSettingsNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormSettingsRepository implements SettingsRepository
var _ tenant.SettingsRepository = (*GormSettingsRepository)(nil)
