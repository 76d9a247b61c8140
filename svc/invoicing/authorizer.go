package invoicing

import (
	"context"

	"github.com/google/uuid"
)

// Action names the permission checked before an operation runs.
type Action string

const (
	ActionGenerateInvoice Action = "invoice:generate"
	ActionCancelInvoice   Action = "invoice:cancel"
)

// Authorizer answers whether a requester may perform an action for a tenant.
// Role storage and evaluation live outside this module; the service only
// consumes the verdict.
type Authorizer interface {
	HasPermission(ctx context.Context, requesterID, tenantID uuid.UUID, action Action) (bool, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, requesterID, tenantID uuid.UUID, action Action) (bool, error)

func (f AuthorizerFunc) HasPermission(ctx context.Context, requesterID, tenantID uuid.UUID, action Action) (bool, error) {
	return f(ctx, requesterID, tenantID, action)
}
