package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store over PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

// NewPGStore creates a Store backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("quota: pgx pool is required")
	}
	return &PGStore{pool: pool}
}

const subscriptionColumns = `
	id, tenant_id, plan_id, status, invoices_used,
	trial_ends_at, current_period_ends_at, created_at, updated_at, cancelled_at`

// Current returns the most recently created non-cancelled subscription.
func (s *PGStore) Current(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	q := `
		SELECT ` + subscriptionColumns + `
		FROM tenant_subscriptions
		WHERE tenant_id = $1 AND status <> $2
		ORDER BY created_at DESC
		LIMIT 1`

	sub, err := scanSubscription(s.pool.QueryRow(ctx, q, tenantID, StatusCancelled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("get current subscription: %w", err)
	}
	return sub, nil
}

// Save creates or updates a subscription keyed by its ID.
func (s *PGStore) Save(ctx context.Context, sub *Subscription) error {
	const q = `
		INSERT INTO tenant_subscriptions
			(id, tenant_id, plan_id, status, invoices_used,
			 trial_ends_at, current_period_ends_at, created_at, updated_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now(), $8)
		ON CONFLICT (id) DO UPDATE SET
			plan_id = EXCLUDED.plan_id,
			status = EXCLUDED.status,
			invoices_used = EXCLUDED.invoices_used,
			trial_ends_at = EXCLUDED.trial_ends_at,
			current_period_ends_at = EXCLUDED.current_period_ends_at,
			cancelled_at = EXCLUDED.cancelled_at,
			updated_at = now()`

	_, err := s.pool.Exec(ctx, q,
		sub.ID, sub.TenantID, sub.PlanID, sub.Status, sub.InvoicesUsed,
		sub.TrialEndsAt, sub.CurrentPeriodEndsAt, sub.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

// IncrementUsage adds one to invoices_used on the active/trial subscription.
func (s *PGStore) IncrementUsage(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	sub, err := incrementUsage(ctx, s.pool, tenantID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// IncrementUsageTx performs the usage increment inside an existing
// transaction so it commits or rolls back together with the invoice insert.
func (s *PGStore) IncrementUsageTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) (*Subscription, error) {
	return incrementUsage(ctx, tx, tenantID)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func incrementUsage(ctx context.Context, q querier, tenantID uuid.UUID) (*Subscription, error) {
	// The WHERE clause limits the update to the tenant's current billable
	// subscription; the single UPDATE statement makes the increment atomic.
	query := `
		UPDATE tenant_subscriptions
		SET invoices_used = invoices_used + 1, updated_at = now()
		WHERE id = (
			SELECT id FROM tenant_subscriptions
			WHERE tenant_id = $1 AND status IN ($2, $3)
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING ` + subscriptionColumns

	sub, err := scanSubscription(q.QueryRow(ctx, query, tenantID, StatusActive, StatusTrial))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveSubscription
		}
		return nil, fmt.Errorf("increment invoice usage: %w", err)
	}
	return sub, nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var sub Subscription
	err := row.Scan(
		&sub.ID, &sub.TenantID, &sub.PlanID, &sub.Status, &sub.InvoicesUsed,
		&sub.TrialEndsAt, &sub.CurrentPeriodEndsAt, &sub.CreatedAt, &sub.UpdatedAt, &sub.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
