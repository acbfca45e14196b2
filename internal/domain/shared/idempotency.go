package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed webhook event IDs so a redelivered
// event is recognized instead of acted on twice
type IdempotencyStore interface {
	// MarkProcessed records the event ID with a TTL. Returns true when the
	// ID was newly recorded, false when a live record already existed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// Close releases the store's resources
	Close() error
}

// IdempotencyConfig holds configuration for webhook deduplication
type IdempotencyConfig struct {
	// TTL is how long a processed event ID stays recorded. The same ID can
	// be processed again after it lapses.
	TTL time.Duration

	// Enabled turns event-ID deduplication on or off
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
