package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Provider over PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Provider = (*PGStore)(nil)

// NewPGStore creates a Provider backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("tenant: pgx pool is required")
	}
	return &PGStore{pool: pool}
}

// GetByID retrieves a tenant by its UUID.
func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	const q = `
		SELECT id, name, rfc, active, created_at
		FROM tenants
		WHERE id = $1`

	var t Tenant
	err := s.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.RFC, &t.Active, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

// ListActive returns all active tenants.
func (s *PGStore) ListActive(ctx context.Context) ([]Tenant, error) {
	const q = `
		SELECT id, name, rfc, active, created_at
		FROM tenants
		WHERE active
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var out []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.RFC, &t.Active, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return out, nil
}

// Save creates or updates a tenant keyed by its ID.
func (s *PGStore) Save(ctx context.Context, t *Tenant) error {
	const q = `
		INSERT INTO tenants (id, name, rfc, active, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rfc = EXCLUDED.rfc,
			active = EXCLUDED.active`

	if _, err := s.pool.Exec(ctx, q, t.ID, t.Name, t.RFC, t.Active); err != nil {
		return fmt.Errorf("save tenant: %w", err)
	}
	return nil
}
