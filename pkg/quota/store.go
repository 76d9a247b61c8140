package quota

import (
	"context"

	"github.com/google/uuid"
)

// Store persists subscriptions.
type Store interface {
	// Current returns the tenant's most recently created non-cancelled
	// subscription, or ErrNoSubscription.
	Current(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription.
	Save(ctx context.Context, sub *Subscription) error

	// IncrementUsage atomically adds one to InvoicesUsed on the tenant's
	// active or trial subscription and returns the updated record.
	// Returns ErrNoActiveSubscription instead of silently no-opping when no
	// such subscription exists.
	//
	// The invoicing service calls the SQL equivalent of this inside the same
	// transaction that inserts the invoice row; this method exists for
	// callers outside that path and for the in-memory implementation.
	IncrementUsage(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)
}
