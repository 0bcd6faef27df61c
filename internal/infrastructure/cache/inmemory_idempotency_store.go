package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rentdesk/backend/internal/domain/shared"
)

const janitorInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps processed payment-submission keys
// in a map with per-key TTLs. Suited to single-instance deployments
// and tests; clustered deployments use the Redis store so retries
// landing on another instance still deduplicate.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	deadlines map[string]time.Time
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore returns a store with a running janitor
// goroutine. Call Close to stop it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		deadlines: make(map[string]time.Time),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.janitor()
	return s
}

// MarkProcessed records key for ttl. Returns false when the key is
// already live, which signals a duplicate submission.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.deadlines[key]; ok && now.Before(deadline) {
		return false, nil
	}
	s.deadlines[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key is live. Expired keys read as
// unprocessed.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline, ok := s.deadlines[key]
	return ok && time.Now().Before(deadline), nil
}

// Delete removes key immediately so the submission can be retried.
func (s *InMemoryIdempotencyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deadlines, key)
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

func (s *InMemoryIdempotencyStore) janitor() {
	defer close(s.done)

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.dropExpired()
		}
	}
}

func (s *InMemoryIdempotencyStore) dropExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, deadline := range s.deadlines {
		if now.After(deadline) {
			delete(s.deadlines, key)
		}
	}
}

// Size reports the number of stored keys, expired ones included
// until the janitor runs.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deadlines)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
