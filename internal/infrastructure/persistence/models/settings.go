package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/menubridge/backend/internal/domain/menu"
	"github.com/menubridge/backend/internal/domain/tenant"
)

// SettingsModel is the persistence model for tenant Settings. One row per
// tenant, enforced by the unique index.
type SettingsModel struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID                uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_settings_tenant"`
	ProviderAccessToken     string          `gorm:"type:text"`
	ProviderLocationID      string          `gorm:"type:varchar(100)"`
	ProviderEnvironment     string          `gorm:"type:varchar(20);not null;default:'sandbox'"`
	MarketplaceClientID     string          `gorm:"type:varchar(255)"`
	MarketplaceClientSecret string          `gorm:"type:text"`
	MarketplaceStoreID      string          `gorm:"type:varchar(100)"`
	MarketplaceAccessToken  string          `gorm:"type:text"`
	MarketplaceRefreshToken string          `gorm:"type:text"`
	MarketplaceTokenExpiry  *time.Time      ``
	GlobalMarkupKind        string          `gorm:"type:varchar(20);not null;default:'PERCENT'"`
	GlobalMarkupValue       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:30"`
	AutoPauseOnStockout     bool            `gorm:"not null;default:true"`
	SyncHours               bool            `gorm:"not null;default:false"`
	SyncImages              bool            `gorm:"not null;default:false"`
	CreatedAt               time.Time       `gorm:"not null"`
	UpdatedAt               time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettingsModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to a domain Settings entity.
func (m *SettingsModel) ToDomain() *tenant.Settings {
	return &tenant.Settings{
		ID:                      m.ID,
		TenantID:                m.TenantID,
		ProviderAccessToken:     m.ProviderAccessToken,
		ProviderLocationID:      m.ProviderLocationID,
		ProviderEnvironment:     tenant.ProviderEnvironment(m.ProviderEnvironment),
		MarketplaceClientID:     m.MarketplaceClientID,
		MarketplaceClientSecret: m.MarketplaceClientSecret,
		MarketplaceStoreID:      m.MarketplaceStoreID,
		MarketplaceAccessToken:  m.MarketplaceAccessToken,
		MarketplaceRefreshToken: m.MarketplaceRefreshToken,
		MarketplaceTokenExpiry:  m.MarketplaceTokenExpiry,
		GlobalMarkupKind:        menu.MarkupKind(m.GlobalMarkupKind),
		GlobalMarkupValue:       m.GlobalMarkupValue,
		AutoPauseOnStockout:     m.AutoPauseOnStockout,
		SyncHours:               m.SyncHours,
		SyncImages:              m.SyncImages,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Settings entity.
func (m *SettingsModel) FromDomain(s *tenant.Settings) {
	m.ID = s.ID
	m.TenantID = s.TenantID
	m.ProviderAccessToken = s.ProviderAccessToken
	m.ProviderLocationID = s.ProviderLocationID
	m.ProviderEnvironment = string(s.ProviderEnvironment)
	m.MarketplaceClientID = s.MarketplaceClientID
	m.MarketplaceClientSecret = s.MarketplaceClientSecret
	m.MarketplaceStoreID = s.MarketplaceStoreID
	m.MarketplaceAccessToken = s.MarketplaceAccessToken
	m.MarketplaceRefreshToken = s.MarketplaceRefreshToken
	m.MarketplaceTokenExpiry = s.MarketplaceTokenExpiry
	m.GlobalMarkupKind = s.GlobalMarkupKind.String()
	m.GlobalMarkupValue = s.GlobalMarkupValue
	m.AutoPauseOnStockout = s.AutoPauseOnStockout
	m.SyncHours = s.SyncHours
	m.SyncImages = s.SyncImages
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// SettingsModelFromDomain creates a new persistence model from a domain Settings entity.
func SettingsModelFromDomain(s *tenant.Settings) *SettingsModel {
	m := &SettingsModel{}
	m.FromDomain(s)
	return m
}
