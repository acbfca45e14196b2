package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/menubridge/backend/internal/domain/menu"
)

// MenuItemModel is the persistence model for the MenuItem domain entity.
// Provider identity is unique per tenant so catalog pulls upsert cleanly.
type MenuItemModel struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_menu_items_tenant_provider,priority:1;index:idx_menu_items_tenant,priority:1"`
	ProviderItemID    string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_menu_items_tenant_provider,priority:2"`
	Name              string           `gorm:"type:varchar(255);not null"`
	Description       string           `gorm:"type:text"`
	BasePrice         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ImageURL          string           `gorm:"type:text"`
	Category          string           `gorm:"type:varchar(255)"`
	Available         bool             `gorm:"not null;default:true"`
	MarketplaceItemID string           `gorm:"type:varchar(100);index"`
	Synced            bool             `gorm:"not null;default:false"`
	LastSyncedAt      *time.Time       ``
	PriceMode         string           `gorm:"type:varchar(20);not null;default:'AUTOMATIC'"`
	ItemMarkupKind    *string          `gorm:"type:varchar(20)"`
	ItemMarkupValue   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	AdjustedPrice     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt         time.Time        `gorm:"not null"`
	UpdatedAt         time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MenuItemModel) TableName() string {
	return "menu_items"
}

// ToDomain converts the persistence model to a domain MenuItem entity.
func (m *MenuItemModel) ToDomain() *menu.MenuItem {
	item := &menu.MenuItem{
		ID:                m.ID,
		TenantID:          m.TenantID,
		ProviderItemID:    m.ProviderItemID,
		Name:              m.Name,
		Description:       m.Description,
		BasePrice:         m.BasePrice,
		ImageURL:          m.ImageURL,
		Category:          m.Category,
		Available:         m.Available,
		MarketplaceItemID: m.MarketplaceItemID,
		Synced:            m.Synced,
		LastSyncedAt:      m.LastSyncedAt,
		PriceMode:         menu.PriceMode(m.PriceMode),
		AdjustedPrice:     m.AdjustedPrice,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}

	if m.ItemMarkupKind != nil && m.ItemMarkupValue != nil {
		item.ItemMarkup = &menu.MarkupPolicy{
			Kind:  menu.MarkupKind(*m.ItemMarkupKind),
			Value: *m.ItemMarkupValue,
		}
	}

	return item
}

// FromDomain populates the persistence model from a domain MenuItem entity.
func (m *MenuItemModel) FromDomain(item *menu.MenuItem) {
	m.ID = item.ID
	m.TenantID = item.TenantID
	m.ProviderItemID = item.ProviderItemID
	m.Name = item.Name
	m.Description = item.Description
	m.BasePrice = item.BasePrice
	m.ImageURL = item.ImageURL
	m.Category = item.Category
	m.Available = item.Available
	m.MarketplaceItemID = item.MarketplaceItemID
	m.Synced = item.Synced
	m.LastSyncedAt = item.LastSyncedAt
	m.PriceMode = item.PriceMode.String()
	m.AdjustedPrice = item.AdjustedPrice
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt

	if item.ItemMarkup != nil {
		kind := item.ItemMarkup.Kind.String()
		value := item.ItemMarkup.Value
		m.ItemMarkupKind = &kind
		m.ItemMarkupValue = &value
	} else {
		m.ItemMarkupKind = nil
		m.ItemMarkupValue = nil
	}
}

// MenuItemModelFromDomain creates a new persistence model from a domain MenuItem entity.
func MenuItemModelFromDomain(item *menu.MenuItem) *MenuItemModel {
	m := &MenuItemModel{}
	m.FromDomain(item)
	return m
}
