package invoicing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturio/pkg/quota"
)

// MemoryStore implements Store in memory for tests and local development.
// It mirrors the PG store's atomicity: an invoice lands together with its
// usage increment or not at all.
type MemoryStore struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*Invoice
	quota    *quota.MemoryStore
}

var _ Store = (*MemoryStore)(nil)

type folioSlot struct {
	tenantID uuid.UUID
	series   string
	number   int64
}

// NewMemoryStore creates an in-memory invoice store coupled to an in-memory
// quota store.
func NewMemoryStore(quotaStore *quota.MemoryStore) *MemoryStore {
	if quotaStore == nil {
		panic("invoicing: quota store is required")
	}
	return &MemoryStore{
		invoices: make(map[uuid.UUID]*Invoice),
		quota:    quotaStore,
	}
}

// Create persists the invoice and increments quota usage atomically.
func (s *MemoryStore) Create(ctx context.Context, inv *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := folioSlot{inv.TenantID, inv.Series, inv.FolioNumber}
	for _, existing := range s.invoices {
		if (folioSlot{existing.TenantID, existing.Series, existing.FolioNumber}) == slot {
			return ErrDuplicateFolio
		}
	}

	// Increment first: if it fails, nothing was written.
	if _, err := s.quota.IncrementUsage(ctx, inv.TenantID); err != nil {
		return err
	}

	cp := *inv
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.invoices[inv.ID] = &cp
	return nil
}

// GetByID retrieves an invoice scoped to a tenant.
func (s *MemoryStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

// UpdateStatus changes the lifecycle status of an invoice.
func (s *MemoryStore) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return ErrInvoiceNotFound
	}
	inv.Status = status
	inv.UpdatedAt = time.Now().UTC()
	return nil
}

// ListExternalIDs returns the fiscal IDs stamped for a tenant since a time.
func (s *MemoryStore) ListExternalIDs(ctx context.Context, tenantID uuid.UUID, since time.Time) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{})
	for _, inv := range s.invoices {
		if inv.TenantID == tenantID && !inv.StampedAt.Before(since) {
			ids[inv.ExternalID] = struct{}{}
		}
	}
	return ids, nil
}

// Count returns the number of stored invoices. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}
