package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/infrastructure/persistence/models"
)

// GormMenuItemRepository implements MenuItemRepository using GORM
type GormMenuItemRepository struct {
	db *gorm.DB
}

// NewGormMenuItemRepository creates a new GormMenuItemRepository
func NewGormMenuItemRepository(db *gorm.DB) *GormMenuItemRepository {
	return &GormMenuItemRepository{db: db}
}

// Save upserts a menu item keyed by its ID
func (r *GormMenuItemRepository) Save(ctx context.Context, item *menu.MenuItem) error {
	model := models.MenuItemModelFromDomain(item)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByID finds an item by its internal ID within a tenant
func (r *GormMenuItemRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*menu.MenuItem, error) {
	var model models.MenuItemModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, menu.ErrItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the items with the given internal IDs within a tenant
func (r *GormMenuItemRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*menu.MenuItem, error) {
	if len(ids) == 0 {
		return []*menu.MenuItem{}, nil
	}

	var itemModels []models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("name ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]*menu.MenuItem, len(itemModels))
	for i := range itemModels {
		items[i] = itemModels[i].ToDomain()
	}
	return items, nil
}

// FindByProviderItemID finds an item by its provider catalog identifier
func (r *GormMenuItemRepository) FindByProviderItemID(ctx context.Context, tenantID uuid.UUID, providerItemID string) (*menu.MenuItem, error) {
	var model models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND provider_item_id = ?", tenantID, providerItemID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, menu.ErrItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByTenant returns all items for a tenant ordered by name
func (r *GormMenuItemRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*menu.MenuItem, error) {
	var itemModels []models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]*menu.MenuItem, len(itemModels))
	for i := range itemModels {
		items[i] = itemModels[i].ToDomain()
	}
	return items, nil
}

// CountByTenant returns the total number of items for a tenant
func (r *GormMenuItemRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MenuItemModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// CountSynced returns the number of items currently synced to the marketplace
func (r *GormMenuItemRepository) CountSynced(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MenuItemModel{}).
		Where("tenant_id = ? AND synced = ?", tenantID, true).
		Count(&count).Error
	return count, err
}

// Ensure GormMenuItemRepository implements MenuItemRepository
var _ menu.MenuItemRepository = (*GormMenuItemRepository)(nil)
