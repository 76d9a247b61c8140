package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Handle identifies one successful acquisition. The token is a fresh random
// value per acquisition; Release only succeeds while the store still holds it.
type Handle struct {
	Key        string
	Token      string
	AcquiredAt time.Time
	TTL        time.Duration
}

// Locker grants mutually exclusive, TTL-bounded ownership of named resources.
type Locker interface {
	// Acquire attempts to take the lock without blocking.
	// Returns ErrNotAcquired if the key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (*Handle, error)

	// Release frees the lock if and only if the handle's token is still the
	// stored owner. Returns ErrNotHeld if the lock expired or was taken over.
	Release(ctx context.Context, h *Handle) error
}

// newToken returns the random owner token stored under the lock key.
func newToken() string {
	return uuid.NewString()
}

// DefaultKeyPrefix namespaces all lock keys so they never collide with other
// users of the same Redis instance.
const DefaultKeyPrefix = "facturio:lock"

// FolioKey names the lock protecting folio allocation for one tenant+series.
// Per-tenant keys keep unrelated tenants fully independent.
func FolioKey(tenantID uuid.UUID, series string) string {
	return fmt.Sprintf("%s:folio:%s:%s", DefaultKeyPrefix, tenantID, series)
}

// InvoiceKey names the lock serializing the whole invoice-creation sequence
// for one tenant: quota re-check, folio allocation, stamping, persistence.
func InvoiceKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:invoice:%s", DefaultKeyPrefix, tenantID)
}
