package tenant

import (
	"context"

	"github.com/google/uuid"
)

// SettingsRepository defines persistence operations for tenant settings
type SettingsRepository interface {
	// Save upserts the settings row for a tenant
	Save(ctx context.Context, s *Settings) error

	// FindByTenant loads the settings for a tenant
	// Returns ErrSettingsNotFound when the tenant has no settings row
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*Settings, error)
}
