package folio

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore advances the tenant_folios counter with a single upsert statement.
// The alternative read-then-update transaction works too, but the upsert
// avoids one round-trip and leaves no window between read and write.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

// NewPGStore creates a Store backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("folio: pgx pool is required")
	}
	return &PGStore{pool: pool}
}

// NextN reserves n consecutive folio numbers and returns the first of the
// block. current_number stores the last allocated value, so a fresh row
// inserted with current_number = n yields Seed as the first number.
func (s *PGStore) NextN(ctx context.Context, tenantID uuid.UUID, series string, n int64) (int64, error) {
	if n < 1 {
		n = 1
	}

	const q = `
		INSERT INTO tenant_folios (tenant_id, series, current_number, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (tenant_id, series)
		DO UPDATE SET current_number = tenant_folios.current_number + $3, updated_at = now()
		RETURNING current_number`

	var last int64
	if err := s.pool.QueryRow(ctx, q, tenantID, series, n).Scan(&last); err != nil {
		return 0, fmt.Errorf("advance folio counter for %s/%s: %w", tenantID, series, err)
	}

	return last - n + 1, nil
}
