package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menubridge/backend/internal/domain/order"
	"github.com/menubridge/backend/internal/domain/shared"
	"github.com/menubridge/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts a new order with its items. Insertion conflicts on the
// (tenant_id, marketplace_order_id) unique index resolve to DO NOTHING; zero
// affected rows means the order already exists and the caller gets
// shared.ErrAlreadyExists instead of a second row.
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Omit("Items").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "marketplace_order_id"}},
				DoNothing: true,
			}).
			Create(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrAlreadyExists
		}

		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// Update persists status and provider linkage changes
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND tenant_id = ?", o.ID, o.TenantID).
		Updates(map[string]interface{}{
			"status":            o.Status.String(),
			"provider_order_id": o.ProviderOrderID,
			"updated_at":        o.UpdatedAt,
		}).Error
}

// FindByMarketplaceOrderID finds an order by its marketplace ID
func (r *GormOrderRepository) FindByMarketplaceOrderID(ctx context.Context, tenantID uuid.UUID, marketplaceOrderID string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND marketplace_order_id = ?", tenantID, marketplaceOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListRecent returns the latest orders with their items, newest first
func (r *GormOrderRepository) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// ListCreatedSince returns orders created at or after the given time
func (r *GormOrderRepository) ListCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]*order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND created_at >= ?", tenantID, since).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// CountByTenant returns the total number of orders for a tenant
func (r *GormOrderRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// SumTotalAmount returns the summed total amount across all orders
func (r *GormOrderRepository) SumTotalAmount(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
