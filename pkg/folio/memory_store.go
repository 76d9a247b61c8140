package folio

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory for tests and local development.
// Same contract as PGStore: atomic advance, lazy row creation, Seed start.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[reservationKey]int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[reservationKey]int64),
	}
}

// NextN reserves n consecutive numbers and returns the first of the block.
func (s *MemoryStore) NextN(ctx context.Context, tenantID uuid.UUID, series string, n int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if n < 1 {
		n = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := reservationKey{tenantID: tenantID, series: series}
	last := s.counters[key] + n
	s.counters[key] = last

	return last - n + 1, nil
}

// Current returns the last allocated number for inspection in tests.
func (s *MemoryStore) Current(tenantID uuid.UUID, series string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[reservationKey{tenantID: tenantID, series: series}]
}
