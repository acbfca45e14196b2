package menu

import (
	"context"

	"github.com/google/uuid"
)

// MenuItemRepository defines persistence operations for menu items
type MenuItemRepository interface {
	// Save upserts a menu item keyed by its ID
	Save(ctx context.Context, item *MenuItem) error

	// FindByID finds an item by its internal ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*MenuItem, error)

	// FindByIDs loads the items with the given internal IDs within a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*MenuItem, error)

	// FindByProviderItemID finds an item by its provider catalog identifier
	FindByProviderItemID(ctx context.Context, tenantID uuid.UUID, providerItemID string) (*MenuItem, error)

	// ListByTenant returns all items for a tenant ordered by name
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*MenuItem, error)

	// CountByTenant returns the total number of items for a tenant
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountSynced returns the number of items currently synced to the marketplace
	CountSynced(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
