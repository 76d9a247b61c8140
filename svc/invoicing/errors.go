package invoicing

import (
	"errors"
	"fmt"
)

var (
	// ErrLocked means another operation for the same tenant holds the
	// invoice lock and attempts ran out. Safe to retry in a moment.
	ErrLocked = errors.New("another invoice operation is in progress for this tenant")

	// ErrNotAuthorized means the requester lacks permission to generate
	// invoices for the tenant.
	ErrNotAuthorized = errors.New("requester is not authorized to generate invoices")

	// ErrFolioAllocation wraps database failures while allocating the folio.
	ErrFolioAllocation = errors.New("failed to allocate folio")

	// ErrPersistFailed means the provider stamped the invoice but the local
	// write failed. The operation log carries the external ID; the row must
	// be restored manually or by the reconciliation sweep.
	ErrPersistFailed = errors.New("invoice stamped but could not be persisted")

	// ErrDuplicateFolio means an insert collided with an existing
	// (tenant, series, folio) row. With the lock held this should be
	// unreachable; the unique index is the last line of defense.
	ErrDuplicateFolio = errors.New("folio already used for this tenant and series")

	// ErrInvoiceNotFound is returned when an invoice cannot be found.
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// QuotaDeniedError carries the user-facing reason the quota guard refused
// the operation.
type QuotaDeniedError struct {
	Reason string
}

func (e *QuotaDeniedError) Error() string {
	return "quota denied: " + e.Reason
}

// ExternalCallError wraps a provider failure. Transient reports whether the
// failure class may clear on retry; callers phrase the two differently
// ("provider is slow, try again" vs "provider rejected the invoice").
type ExternalCallError struct {
	Transient bool
	Err       error
}

func (e *ExternalCallError) Error() string {
	kind := "terminal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("provider call failed (%s): %v", kind, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}
