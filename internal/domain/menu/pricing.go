package menu

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Pricing errors
var (
	ErrInvalidMarkupKind  = errors.New("menu: invalid markup kind")
	ErrNegativeBasePrice  = errors.New("menu: base price cannot be negative")
	ErrManualPriceMissing = errors.New("menu: manual price mode requires an adjusted price")
)

// ---------------------------------------------------------------------------
// MarkupKind
// ---------------------------------------------------------------------------

// MarkupKind describes how a markup value is applied to a base price
type MarkupKind string

const (
	// MarkupKindPercent adds a percentage of the base price
	MarkupKindPercent MarkupKind = "PERCENT"
	// MarkupKindFixed adds a fixed currency amount
	MarkupKindFixed MarkupKind = "FIXED"
)

// IsValid returns true if the markup kind is valid
func (k MarkupKind) IsValid() bool {
	switch k {
	case MarkupKindPercent, MarkupKindFixed:
		return true
	default:
		return false
	}
}

// String returns the string representation of MarkupKind
func (k MarkupKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// MarkupPolicy
// ---------------------------------------------------------------------------

// MarkupPolicy is a value object describing how to inflate a base price for
// a marketplace listing
type MarkupPolicy struct {
	Kind  MarkupKind
	Value decimal.Decimal
}

// NewMarkupPolicy creates a validated markup policy
func NewMarkupPolicy(kind MarkupKind, value decimal.Decimal) (MarkupPolicy, error) {
	p := MarkupPolicy{Kind: kind, Value: value}
	if err := p.Validate(); err != nil {
		return MarkupPolicy{}, err
	}
	return p, nil
}

// Validate validates the markup policy
func (p MarkupPolicy) Validate() error {
	if !p.Kind.IsValid() {
		return ErrInvalidMarkupKind
	}
	return nil
}

// DefaultMarkupPolicy is the policy applied when neither the item nor the
// tenant carries one (30% markup, matching the dashboard default)
func DefaultMarkupPolicy() MarkupPolicy {
	return MarkupPolicy{Kind: MarkupKindPercent, Value: decimal.NewFromInt(30)}
}

// Adjust computes the marketplace-facing price from a base price and a markup
// policy, rounded to cents with half-up semantics.
// PERCENT: base * (1 + value/100). FIXED: base + value.
// Pure and deterministic; the one place in the system where that must be total.
func Adjust(base decimal.Decimal, policy MarkupPolicy) decimal.Decimal {
	var adjusted decimal.Decimal
	switch policy.Kind {
	case MarkupKindPercent:
		factor := decimal.NewFromInt(1).Add(policy.Value.Div(decimal.NewFromInt(100)))
		adjusted = base.Mul(factor)
	case MarkupKindFixed:
		adjusted = base.Add(policy.Value)
	default:
		adjusted = base
	}
	return adjusted.Round(2)
}

// ---------------------------------------------------------------------------
// Minor-unit conversion
// ---------------------------------------------------------------------------

// ToMinorUnits converts a decimal currency amount to integer minor units
// (cents). Values already quantized to cents round-trip exactly.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts integer minor units (cents) to a decimal amount
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}
