package tenant

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Provider in memory for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*Tenant
}

var _ Provider = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory tenant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[uuid.UUID]*Tenant)}
}

// GetByID retrieves a tenant by its UUID.
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

// Save creates or replaces a tenant.
func (s *MemoryStore) Save(ctx context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

// ListActive returns all active tenants.
func (s *MemoryStore) ListActive(ctx context.Context) ([]Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Tenant
	for _, t := range s.tenants {
		if t.Active {
			out = append(out, *t)
		}
	}
	return out, nil
}
