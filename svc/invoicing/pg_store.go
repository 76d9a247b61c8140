package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturio/facturio/pkg/pg"
	"github.com/facturio/facturio/pkg/quota"
)

// PGStore implements Store over PostgreSQL.
type PGStore struct {
	pool  *pgxpool.Pool
	quota *quota.PGStore
}

var _ Store = (*PGStore)(nil)

// NewPGStore creates a Store backed by PostgreSQL. The quota store is needed
// because Create increments usage inside the same transaction.
func NewPGStore(pool *pgxpool.Pool, quotaStore *quota.PGStore) *PGStore {
	if pool == nil {
		panic("invoicing: pgx pool is required")
	}
	if quotaStore == nil {
		panic("invoicing: quota store is required")
	}
	return &PGStore{pool: pool, quota: quotaStore}
}

// Create persists the invoice and increments quota usage in one transaction.
func (s *PGStore) Create(ctx context.Context, inv *Invoice) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin invoice tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	const q = `
		INSERT INTO tenant_invoices
			(id, tenant_id, type, series, folio_number, external_id,
			 receiver_rfc, receiver_name, total, status, issued_by,
			 stamped_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())`

	_, err = tx.Exec(ctx, q,
		inv.ID, inv.TenantID, inv.Type, inv.Series, inv.FolioNumber, inv.ExternalID,
		inv.ReceiverRFC, inv.ReceiverName, inv.Total, inv.Status, inv.IssuedBy,
		inv.StampedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateFolio
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	if _, err := s.quota.IncrementUsageTx(ctx, tx, inv.TenantID); err != nil {
		return fmt.Errorf("increment usage with invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit invoice tx: %w", err)
	}
	return nil
}

const invoiceColumns = `
	id, tenant_id, type, series, folio_number, external_id,
	receiver_rfc, receiver_name, total, status, issued_by,
	stamped_at, created_at, updated_at`

// GetByID retrieves an invoice scoped to a tenant.
func (s *PGStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM tenant_invoices WHERE tenant_id = $1 AND id = $2`

	var inv Invoice
	err := s.pool.QueryRow(ctx, q, tenantID, id).Scan(
		&inv.ID, &inv.TenantID, &inv.Type, &inv.Series, &inv.FolioNumber, &inv.ExternalID,
		&inv.ReceiverRFC, &inv.ReceiverName, &inv.Total, &inv.Status, &inv.IssuedBy,
		&inv.StampedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// UpdateStatus changes the lifecycle status of an invoice.
func (s *PGStore) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error {
	const q = `
		UPDATE tenant_invoices
		SET status = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`

	tag, err := s.pool.Exec(ctx, q, tenantID, id, status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// ListExternalIDs returns the fiscal IDs stamped for a tenant since a time.
func (s *PGStore) ListExternalIDs(ctx context.Context, tenantID uuid.UUID, since time.Time) (map[string]struct{}, error) {
	const q = `
		SELECT external_id FROM tenant_invoices
		WHERE tenant_id = $1 AND stamped_at >= $2`

	rows, err := s.pool.Query(ctx, q, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("list external IDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan external ID: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate external IDs: %w", err)
	}
	return ids, nil
}
