package menu

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem errors
var (
	ErrInvalidTenantID       = errors.New("menu: invalid tenant ID")
	ErrInvalidProviderItemID = errors.New("menu: invalid provider item ID")
	ErrItemNotFound          = errors.New("menu: item not found")
	ErrInvalidPriceMode      = errors.New("menu: invalid price mode")
)

// UnnamedItemPlaceholder is used when the provider catalog omits an item name
const UnnamedItemPlaceholder = "Unnamed Item"

// ---------------------------------------------------------------------------
// PriceMode
// ---------------------------------------------------------------------------

// PriceMode is the tagged variant discriminating how an item's marketplace
// price is determined: automatically from a markup policy, or from an exact
// operator-set value
type PriceMode string

const (
	// PriceModeAutomatic computes the price from the item markup when present,
	// otherwise from the tenant's global markup policy
	PriceModeAutomatic PriceMode = "AUTOMATIC"
	// PriceModeManual uses the stored adjusted price verbatim
	PriceModeManual PriceMode = "MANUAL"
)

// IsValid returns true if the price mode is valid
func (m PriceMode) IsValid() bool {
	switch m {
	case PriceModeAutomatic, PriceModeManual:
		return true
	default:
		return false
	}
}

// String returns the string representation of PriceMode
func (m PriceMode) String() string {
	return string(m)
}

// ---------------------------------------------------------------------------
// ProviderSnapshot
// ---------------------------------------------------------------------------

// ProviderSnapshot carries the provider-sourced fields of one catalog item as
// seen during a pull. The provider is the source of truth for these fields.
type ProviderSnapshot struct {
	ProviderItemID string
	Name           string
	Description    string
	BasePrice      decimal.Decimal
	ImageURL       string
	Category       string
	Available      bool
}

// ---------------------------------------------------------------------------
// MenuItem Entity
// ---------------------------------------------------------------------------

// MenuItem is the canonical representation of one sellable unit, keyed by the
// stable provider catalog identifier and optionally linked to its counterpart
// listing on the marketplace.
type MenuItem struct {
	ID       uuid.UUID
	TenantID uuid.UUID

	// Provider-sourced fields, overwritten on every catalog pull
	ProviderItemID string
	Name           string
	Description    string
	BasePrice      decimal.Decimal
	ImageURL       string
	Category       string
	Available      bool

	// Marketplace linkage, mutated only after a successful publish
	MarketplaceItemID string
	Synced            bool
	LastSyncedAt      *time.Time

	// Price override state
	PriceMode     PriceMode
	ItemMarkup    *MarkupPolicy    // item-level policy, automatic mode only
	AdjustedPrice *decimal.Decimal // manual value, or cache of the last computation

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMenuItem creates a menu item from a provider snapshot with markup and
// linkage fields unset
func NewMenuItem(tenantID uuid.UUID, snap ProviderSnapshot) (*MenuItem, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if snap.ProviderItemID == "" {
		return nil, ErrInvalidProviderItemID
	}

	name := snap.Name
	if name == "" {
		name = UnnamedItemPlaceholder
	}

	now := time.Now()
	return &MenuItem{
		ID:             uuid.New(),
		TenantID:       tenantID,
		ProviderItemID: snap.ProviderItemID,
		Name:           name,
		Description:    snap.Description,
		BasePrice:      snap.BasePrice,
		ImageURL:       snap.ImageURL,
		Category:       snap.Category,
		Available:      snap.Available,
		PriceMode:      PriceModeAutomatic,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ApplyProviderSnapshot overwrites the provider-sourced fields only. Markup,
// override, and marketplace linkage fields are preserved untouched.
func (i *MenuItem) ApplyProviderSnapshot(snap ProviderSnapshot) {
	name := snap.Name
	if name == "" {
		name = UnnamedItemPlaceholder
	}
	i.Name = name
	i.Description = snap.Description
	i.BasePrice = snap.BasePrice
	i.ImageURL = snap.ImageURL
	i.Category = snap.Category
	i.Available = snap.Available
	i.UpdatedAt = time.Now()
}

// SetManualPrice switches the item to manual pricing with an exact value that
// bypasses markup formulas at publish time
func (i *MenuItem) SetManualPrice(price decimal.Decimal) {
	p := price.Round(2)
	i.PriceMode = PriceModeManual
	i.ItemMarkup = nil
	i.AdjustedPrice = &p
	i.UpdatedAt = time.Now()
}

// SetItemMarkup gives the item its own markup policy, taking precedence over
// the tenant's global policy
func (i *MenuItem) SetItemMarkup(policy MarkupPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	i.PriceMode = PriceModeAutomatic
	i.ItemMarkup = &policy
	i.AdjustedPrice = nil
	i.UpdatedAt = time.Now()
	return nil
}

// ClearPriceOverride reverts the item to the tenant's global markup policy
func (i *MenuItem) ClearPriceOverride() {
	i.PriceMode = PriceModeAutomatic
	i.ItemMarkup = nil
	i.AdjustedPrice = nil
	i.UpdatedAt = time.Now()
}

// EffectivePrice resolves the price to publish for this item.
// Precedence: manual override verbatim, then the item's own markup policy,
// then the caller-supplied global policy.
func (i *MenuItem) EffectivePrice(global MarkupPolicy) (decimal.Decimal, error) {
	if i.PriceMode == PriceModeManual {
		if i.AdjustedPrice == nil {
			return decimal.Zero, ErrManualPriceMissing
		}
		return *i.AdjustedPrice, nil
	}
	if i.ItemMarkup != nil {
		return Adjust(i.BasePrice, *i.ItemMarkup), nil
	}
	if err := global.Validate(); err != nil {
		global = DefaultMarkupPolicy()
	}
	return Adjust(i.BasePrice, global), nil
}

// MarkPublished records a successful marketplace push: linkage id, synced
// flag, sync timestamp, and the price that was sent (cached for display).
// For manual-mode items the cached value is left alone, it is authoritative.
func (i *MenuItem) MarkPublished(marketplaceItemID string, price decimal.Decimal, at time.Time) {
	i.MarketplaceItemID = marketplaceItemID
	i.Synced = true
	i.LastSyncedAt = &at
	if i.PriceMode != PriceModeManual {
		p := price.Round(2)
		i.AdjustedPrice = &p
	}
	i.UpdatedAt = at
}

// SetAvailability updates the availability flag from an inbound stock event
func (i *MenuItem) SetAvailability(available bool) {
	i.Available = available
	i.UpdatedAt = time.Now()
}

// IsLinked returns true once the item has a marketplace counterpart
func (i *MenuItem) IsLinked() bool {
	return i.MarketplaceItemID != ""
}
