package pac

import (
	"context"
	"time"
)

// Client is the provider adapter contract. Implementations wrap a concrete
// provider API; callers never talk to the provider directly but route every
// call through the outbound queue, which owns concurrency and timeouts.
type Client interface {
	// CreateInvoice submits a request for stamping and returns the fiscal
	// identifiers assigned by the provider. Transient failures should be
	// classifiable by IsTransient; terminal rejections must be returned as
	// *RejectionError.
	CreateInvoice(ctx context.Context, req *InvoiceRequest) (*StampResult, error)

	// CancelInvoice requests cancellation of a previously stamped invoice.
	// Cancellation is a status change on the provider side; the local row is
	// never deleted.
	CancelInvoice(ctx context.Context, externalID, reason string) error

	// ListInvoices returns the invoices the provider stamped for an issuer
	// RFC since the given time. Used by the reconciliation sweep to detect
	// stamped invoices that never made it into local storage.
	ListInvoices(ctx context.Context, issuerRFC string, since time.Time) ([]StampResult, error)

	// LookupCatalog searches a SAT catalog (product codes, unit codes).
	LookupCatalog(ctx context.Context, catalog, query string) ([]CatalogItem, error)

	// UploadCertificate registers a tenant's CSD certificate with the
	// provider.
	UploadCertificate(ctx context.Context, cert Certificate) error
}
