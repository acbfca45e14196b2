package cache

import (
	"context"
	"sync"
	"time"

	"github.com/menubridge/backend/internal/domain/shared"
)

// sweepInterval is how often expired event IDs are purged
const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore is the single-instance implementation of the
// webhook dedup store. A background sweeper bounds memory; correctness does
// not depend on it because lookups check expiry themselves.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	seen      map[string]time.Time // event ID -> expiry instant
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		seen: make(map[string]time.Time),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// MarkProcessed implements shared.IdempotencyStore
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.seen[eventID]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.seen[eventID] = time.Now().Add(ttl)
	return true, nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer close(s.done)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for eventID, expiry := range s.seen {
		if now.After(expiry) {
			delete(s.seen, eventID)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
