package invoicing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/facturio/facturio/pkg/logger"
	"github.com/facturio/facturio/pkg/pac"
	"github.com/facturio/facturio/pkg/pacqueue"
	"github.com/facturio/facturio/pkg/tenant"
)

// TenantSource lists the tenants the reconciler sweeps.
type TenantSource interface {
	ListActive(ctx context.Context) ([]tenant.Tenant, error)
}

// Reconciler periodically compares the provider's record of stamped invoices
// against local rows and reports orphans: invoices the provider stamped that
// never made it into storage (the persist-after-stamp failure window).
//
// The sweep is advisory. It logs at Error severity with every identifier an
// operator needs; it never writes rows itself, because the original request
// payload is gone and a reconstructed row would be a guess.
type Reconciler struct {
	client  pac.Client
	store   Store
	tenants TenantSource
	queue   *pacqueue.Queue
	logger  *slog.Logger

	interval time.Duration
	lookback time.Duration
}

// ReconcilerOption configures the Reconciler.
type ReconcilerOption func(*Reconciler)

// WithSweepInterval sets how often the sweep runs.
func WithSweepInterval(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLookback sets how far back each sweep compares.
func WithLookback(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d > 0 {
			r.lookback = d
		}
	}
}

// WithReconcilerLogger sets the logger. Defaults to slog.Default().
func WithReconcilerLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.logger = log
		}
	}
}

// NewReconciler creates a reconciliation sweep over all active tenants.
// Provider reads are routed through the outbound queue at low priority so a
// sweep never starves live stamping traffic.
func NewReconciler(client pac.Client, store Store, tenants TenantSource, queue *pacqueue.Queue, opts ...ReconcilerOption) *Reconciler {
	if client == nil || store == nil || tenants == nil || queue == nil {
		panic("invoicing: reconciler dependencies are required")
	}

	r := &Reconciler{
		client:   client,
		store:    store,
		tenants:  tenants,
		queue:    queue,
		logger:   slog.Default(),
		interval: time.Hour,
		lookback: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sweeps on the configured interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				r.logger.Error("reconciliation sweep failed", logger.Error(err))
			}
		}
	}
}

// Sweep compares provider and local records once, for all active tenants.
// Returns the first hard error; per-tenant trouble is logged and the sweep
// moves on.
func (r *Reconciler) Sweep(ctx context.Context) error {
	tenants, err := r.tenants.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list tenants for sweep: %w", err)
	}

	since := time.Now().UTC().Add(-r.lookback)
	for _, t := range tenants {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.sweepTenant(ctx, t, since); err != nil {
			r.logger.Warn("tenant sweep incomplete",
				slog.String("tenant_id", t.ID.String()),
				logger.Error(err),
			)
		}
	}
	return nil
}

func (r *Reconciler) sweepTenant(ctx context.Context, t tenant.Tenant, since time.Time) error {
	promise, err := r.queue.Enqueue(ctx, func(ctx context.Context) (any, error) {
		return r.client.ListInvoices(ctx, t.RFC, since)
	}, pacqueue.KindQuick, pacqueue.PriorityLow)
	if err != nil {
		return err
	}

	result, err := promise.Wait(ctx)
	if err != nil {
		return err
	}
	stamped, ok := result.([]pac.StampResult)
	if !ok {
		return fmt.Errorf("unexpected provider result type %T", result)
	}

	local, err := r.store.ListExternalIDs(ctx, t.ID, since)
	if err != nil {
		return err
	}

	for _, s := range stamped {
		if _, exists := local[s.ExternalID]; exists {
			continue
		}
		r.logger.Error("stamped invoice missing locally",
			slog.String("tenant_id", t.ID.String()),
			slog.String("issuer_rfc", t.RFC),
			slog.String("external_id", s.ExternalID),
			slog.String("series", s.Series),
			slog.Int64("folio_number", s.FolioNumber),
			slog.Float64("total", s.Total),
			slog.Time("stamped_at", s.StampedAt),
		)
	}
	return nil
}
