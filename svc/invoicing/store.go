package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists invoices. Create must atomically persist the invoice AND
// increment the tenant's quota usage: either both land or neither does, so a
// failed write never burns a quota slot.
type Store interface {
	// Create persists a stamped invoice and increments usage in one atomic
	// step. Returns ErrDuplicateFolio if the (tenant, series, folio) slot is
	// already taken.
	Create(ctx context.Context, inv *Invoice) error

	// GetByID retrieves an invoice by its local ID.
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// UpdateStatus changes an invoice's lifecycle status.
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error

	// ListExternalIDs returns the external (fiscal) IDs of invoices stamped
	// since the given time, for the reconciliation sweep.
	ListExternalIDs(ctx context.Context, tenantID uuid.UUID, since time.Time) (map[string]struct{}, error)
}
