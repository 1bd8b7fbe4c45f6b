package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process cooldown ledger. It offers the same atomicity
// as the durable backends (one mutex around read-decide-write) but loses all
// records on restart, so it is only suitable for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

// CheckAndReserve implements Store.
func (s *MemoryStore) CheckAndReserve(_ context.Context, userID string, now time.Time, cooldown time.Duration) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.entries[userID]; ok {
		elapsed := now.Sub(last)
		if elapsed < cooldown {
			return Outcome{Remaining: cooldown - elapsed}, nil
		}
	}

	s.entries[userID] = now
	return Outcome{Allowed: true}, nil
}

// Len reports the number of recorded users.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
