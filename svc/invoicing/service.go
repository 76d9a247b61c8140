package invoicing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturio/pkg/folio"
	"github.com/facturio/facturio/pkg/lock"
	"github.com/facturio/facturio/pkg/logger"
	"github.com/facturio/facturio/pkg/pac"
	"github.com/facturio/facturio/pkg/pacqueue"
	"github.com/facturio/facturio/pkg/quota"
	"github.com/facturio/facturio/pkg/statemachine"
	"github.com/facturio/facturio/pkg/tenant"
)

// Deps are the collaborators the service composes. All are required.
type Deps struct {
	Locker     lock.Locker
	Guard      *quota.Guard
	Folios     *folio.Allocator
	Queue      *pacqueue.Queue
	Client     pac.Client
	Store      Store
	Tenants    tenant.Provider
	Authorizer Authorizer
}

// Service runs the safe invoice operation.
type Service struct {
	deps   Deps
	logger *slog.Logger

	// lockTTL must exceed the worst-case duration of quota re-check, folio
	// allocation, the provider call including every queue retry, and
	// persistence combined. An expired lock mid-operation lets a second
	// operator pass the quota re-check before this one increments usage.
	lockTTL         time.Duration
	lockMaxAttempts int
}

// lockTTLSlack is the headroom added on top of the queue's retry budget for
// the steps outside the provider call: quota re-check, folio allocation,
// persistence, and the wait for a dispatch slot.
const lockTTLSlack = 30 * time.Second

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithLockTTL overrides the invoice lock TTL. By default the TTL is derived
// from the queue's retry budget plus slack; an explicit value below that
// budget draws a startup warning.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithLockMaxAttempts overrides how many times lock acquisition is retried
// before the operation gives up with ErrLocked.
func WithLockMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lockMaxAttempts = n
		}
	}
}

// New creates the invoicing service. Missing dependencies panic: the service
// cannot run degraded and wiring bugs should surface at startup.
func New(deps Deps, opts ...Option) *Service {
	switch {
	case deps.Locker == nil:
		panic("invoicing: locker is required")
	case deps.Guard == nil:
		panic("invoicing: quota guard is required")
	case deps.Folios == nil:
		panic("invoicing: folio allocator is required")
	case deps.Queue == nil:
		panic("invoicing: outbound queue is required")
	case deps.Client == nil:
		panic("invoicing: provider client is required")
	case deps.Store == nil:
		panic("invoicing: invoice store is required")
	case deps.Tenants == nil:
		panic("invoicing: tenant provider is required")
	case deps.Authorizer == nil:
		panic("invoicing: authorizer is required")
	}

	s := &Service{
		deps:            deps,
		logger:          slog.Default(),
		lockMaxAttempts: 5,
	}
	for _, opt := range opts {
		opt(s)
	}

	budget := deps.Queue.RetryBudget(pacqueue.KindDefault)
	if s.lockTTL == 0 {
		s.lockTTL = budget + lockTTLSlack
	} else if s.lockTTL <= budget {
		s.logger.Warn("invoice lock ttl is below the queue retry budget, the lock can expire mid-operation",
			slog.Duration("lock_ttl", s.lockTTL),
			slog.Duration("retry_budget", budget),
		)
	}
	return s
}

// GenerateInvoice runs the full safe invoice operation for one request:
// authorize, lock the tenant, re-check quota, allocate the folio, stamp via
// the outbound queue, and persist together with the usage increment.
//
// On provider failure the allocated folio is abandoned: the gap in numbering
// is legal and logged, reuse is not. On persistence failure after provider
// success the error log carries every identifier needed to reconcile
// manually, and the caller gets ErrPersistFailed.
func (s *Service) GenerateInvoice(ctx context.Context, tenantID, requesterID uuid.UUID, req *pac.InvoiceRequest) (*Invoice, error) {
	if req == nil {
		return nil, pac.ErrInvalidRequest
	}
	req.TenantID = tenantID
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.With(
		slog.String("tenant_id", tenantID.String()),
		slog.String("requester_id", requesterID.String()),
		slog.String("series", req.Series),
		slog.String("type", string(req.Type)),
	)
	m := newOperationMachine()

	t, err := s.authorize(ctx, tenantID, requesterID, ActionGenerateInvoice)
	if err != nil {
		return nil, err
	}
	req.IssuerRFC = t.RFC

	// First quota check outside the lock: a tenant that is clearly over
	// quota gets an answer without contending for the lock at all. The
	// authoritative check runs again inside the lock.
	if denied, err := s.checkQuota(ctx, tenantID); err != nil {
		return nil, err
	} else if denied != nil {
		log.Info("invoice denied by quota before lock", slog.String("reason", denied.Reason))
		return nil, denied
	}

	s.advance(m) // -> lock_pending

	var inv *Invoice
	lockErr := lock.WithLock(ctx, s.deps.Locker, lock.InvoiceKey(tenantID), s.lockTTL, s.lockMaxAttempts, func(ctx context.Context) error {
		var err error
		inv, err = s.generateLocked(ctx, log, m, tenantID, requesterID, req)
		return err
	})
	if lockErr != nil {
		if errors.Is(lockErr, lock.ErrNotAcquired) {
			log.Warn("invoice lock busy", slog.String("state", string(m.Current())))
			return nil, ErrLocked
		}
		return nil, s.failOp(log, m, lockErr)
	}

	s.advance(m) // persisting -> done
	log.Info("invoice generated",
		slog.String("invoice_id", inv.ID.String()),
		slog.String("external_id", inv.ExternalID),
		slog.String("folio", inv.Folio()),
	)
	return inv, nil
}

// generateLocked is the critical section: everything here runs under the
// tenant's invoice lock.
func (s *Service) generateLocked(ctx context.Context, log *slog.Logger, m *statemachine.Machine, tenantID, requesterID uuid.UUID, req *pac.InvoiceRequest) (*Invoice, error) {
	s.advance(m) // -> quota_check

	// Re-check under the lock: between the first check and lock acquisition
	// another operator may have consumed the last quota slot.
	if denied, err := s.checkQuota(ctx, tenantID); err != nil {
		return nil, err
	} else if denied != nil {
		log.Info("invoice denied by quota under lock", slog.String("reason", denied.Reason))
		return nil, denied
	}

	s.advance(m) // -> folio_allocated

	number, err := s.deps.Folios.Next(ctx, tenantID, req.Series)
	if err != nil {
		return nil, errors.Join(ErrFolioAllocation, err)
	}
	req.FolioNumber = number
	log = log.With(slog.Int64("folio_number", number))

	s.advance(m) // -> external_call_pending

	stamp, err := s.stampViaQueue(ctx, req)
	if err != nil {
		// The folio is burned: the sequence moved past it and it will never
		// be served again. A gap is legal; reuse is not.
		log.Warn("folio abandoned after provider failure", logger.Error(err))
		return nil, err
	}

	s.advance(m) // -> persisting

	inv := &Invoice{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Type:         req.Type,
		Series:       req.Series,
		FolioNumber:  number,
		ExternalID:   stamp.ExternalID,
		ReceiverRFC:  req.ReceiverRFC,
		ReceiverName: req.ReceiverName,
		Total:        stamp.Total,
		Status:       StatusStamped,
		IssuedBy:     requesterID,
		StampedAt:    stamp.StampedAt,
	}

	if err := s.deps.Store.Create(ctx, inv); err != nil {
		// The provider stamped it; locally it does not exist. Everything an
		// operator needs to restore the row by hand goes into this line.
		log.Error("invoice stamped but persistence failed",
			slog.String("external_id", stamp.ExternalID),
			slog.Float64("total", stamp.Total),
			slog.Time("stamped_at", stamp.StampedAt),
			logger.Error(err),
		)
		return nil, errors.Join(ErrPersistFailed, err)
	}

	return inv, nil
}

// CancelInvoice requests provider-side cancellation and records the status
// change. Cancellation does not free the folio or the quota slot.
func (s *Service) CancelInvoice(ctx context.Context, tenantID, requesterID, invoiceID uuid.UUID, reason string) error {
	if _, err := s.authorize(ctx, tenantID, requesterID, ActionCancelInvoice); err != nil {
		return err
	}

	inv, err := s.deps.Store.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status == StatusCancelled {
		return nil // idempotent
	}

	promise, err := s.deps.Queue.Enqueue(ctx, func(ctx context.Context) (any, error) {
		return nil, s.deps.Client.CancelInvoice(ctx, inv.ExternalID, reason)
	}, pacqueue.KindDefault, pacqueue.PriorityNormal)
	if err != nil {
		return err
	}
	if _, err := promise.Wait(ctx); err != nil {
		return &ExternalCallError{Transient: pac.IsTransient(err), Err: err}
	}

	if err := s.deps.Store.UpdateStatus(ctx, tenantID, invoiceID, StatusCancelled); err != nil {
		s.logger.Error("invoice cancelled at provider but status update failed",
			slog.String("tenant_id", tenantID.String()),
			slog.String("invoice_id", invoiceID.String()),
			slog.String("external_id", inv.ExternalID),
			logger.Error(err),
		)
		return errors.Join(ErrPersistFailed, err)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, tenantID, requesterID uuid.UUID, action Action) (*tenant.Tenant, error) {
	ok, err := s.deps.Authorizer.HasPermission(ctx, requesterID, tenantID, action)
	if err != nil {
		return nil, fmt.Errorf("authorization check: %w", err)
	}
	if !ok {
		return nil, ErrNotAuthorized
	}

	return tenant.RequireActive(ctx, s.deps.Tenants, tenantID)
}

// checkQuota returns a denial (nil when allowed) or an infrastructure error.
func (s *Service) checkQuota(ctx context.Context, tenantID uuid.UUID) (*QuotaDeniedError, error) {
	decision, err := s.deps.Guard.CanGenerateInvoice(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if !decision.CanGenerate {
		return &QuotaDeniedError{Reason: decision.Reason}, nil
	}
	return nil, nil
}

// stampViaQueue routes the provider call through the outbound queue and
// classifies the failure for the caller.
func (s *Service) stampViaQueue(ctx context.Context, req *pac.InvoiceRequest) (*pac.StampResult, error) {
	promise, err := s.deps.Queue.Enqueue(ctx, func(ctx context.Context) (any, error) {
		return s.deps.Client.CreateInvoice(ctx, req)
	}, pacqueue.KindDefault, pacqueue.PriorityHigh)
	if err != nil {
		// ErrQueueFull passes through untouched: it is a backpressure
		// signal, not a provider failure.
		return nil, err
	}

	result, err := promise.Wait(ctx)
	if err != nil {
		return nil, &ExternalCallError{Transient: pac.IsTransient(err), Err: err}
	}

	stamp, ok := result.(*pac.StampResult)
	if !ok {
		return nil, fmt.Errorf("unexpected provider result type %T", result)
	}
	return stamp, nil
}

// advance moves the machine along the happy path. The transition table is
// static, so an illegal advance is a programming error worth a panic in
// development; in production it is logged and the operation continues.
func (s *Service) advance(m *statemachine.Machine) {
	if err := m.Fire(eventAdvance); err != nil {
		s.logger.Error("illegal operation state transition", logger.Error(err))
	}
}

// failOp marks the operation failed and logs where it stopped. Business
// denials (quota, backpressure) log at Warn; everything else is an Error.
func (s *Service) failOp(log *slog.Logger, m *statemachine.Machine, err error) error {
	at := m.Current()
	if m.CanFire(eventFail) {
		_ = m.Fire(eventFail)
	}

	level := slog.LevelError
	var denied *QuotaDeniedError
	if errors.As(err, &denied) || errors.Is(err, pacqueue.ErrQueueFull) {
		level = slog.LevelWarn
	}
	log.Log(context.Background(), level, "invoice operation failed",
		slog.String("failed_at", string(at)),
		logger.Error(err),
	)
	return err
}
