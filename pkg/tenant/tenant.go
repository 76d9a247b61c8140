package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is one issuing business. RFC is the tenant's tax ID and the issuer
// RFC on every invoice it stamps.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	RFC       string    `json:"rfc"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads tenant information from a data source.
type Provider interface {
	// GetByID retrieves a tenant by its UUID.
	// Returns ErrTenantNotFound if no tenant matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
}

// RequireActive loads the tenant and fails with ErrInactiveTenant when the
// tenant exists but is switched off. Deactivation blocks all invoicing
// immediately, regardless of subscription state.
func RequireActive(ctx context.Context, p Provider, id uuid.UUID) (*Tenant, error) {
	t, err := p.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, ErrInactiveTenant
	}
	return t, nil
}
