package quota

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory for tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription // by subscription ID
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory subscription store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs: make(map[uuid.UUID]*Subscription),
	}
}

// Current returns the most recently created non-cancelled subscription.
func (s *MemoryStore) Current(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub := s.currentLocked(tenantID)
	if sub == nil {
		return nil, ErrNoSubscription
	}
	cp := *sub
	return &cp, nil
}

// Save creates or updates a subscription keyed by its ID.
func (s *MemoryStore) Save(ctx context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sub
	s.subs[sub.ID] = &cp
	return nil
}

// IncrementUsage adds one to InvoicesUsed on the active/trial subscription.
func (s *MemoryStore) IncrementUsage(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.currentLocked(tenantID)
	if sub == nil || !sub.Status.Billable() {
		return nil, ErrNoActiveSubscription
	}

	sub.InvoicesUsed++
	cp := *sub
	return &cp, nil
}

func (s *MemoryStore) currentLocked(tenantID uuid.UUID) *Subscription {
	var candidates []*Subscription
	for _, sub := range s.subs {
		if sub.TenantID == tenantID && sub.Status != StatusCancelled {
			candidates = append(candidates, sub)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return candidates[0]
}
