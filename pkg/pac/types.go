package pac

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvoiceType discriminates the request variants the provider accepts.
// Each type carries different required fields, enforced by Validate.
type InvoiceType string

const (
	// TypeIncome is a regular invoice (CFDI de ingreso).
	TypeIncome InvoiceType = "income"
	// TypeCreditNote is a credit note referencing a prior invoice (egreso).
	TypeCreditNote InvoiceType = "credit_note"
	// TypePayment is a payment complement referencing a prior invoice.
	TypePayment InvoiceType = "payment"
)

// Valid reports whether t is one of the known invoice types.
func (t InvoiceType) Valid() bool {
	switch t {
	case TypeIncome, TypeCreditNote, TypePayment:
		return true
	}
	return false
}

// Item is a single invoice line.
type Item struct {
	ProductCode string  // SAT product/service catalog code
	UnitCode    string  // SAT unit catalog code
	Description string
	Quantity    float64
	UnitPrice   float64
}

// Amount returns the line total before tax.
func (i Item) Amount() float64 {
	return i.Quantity * i.UnitPrice
}

// InvoiceRequest is the provider-facing request for one stamping operation.
// The variant-specific fields are only meaningful for the matching Type;
// Validate enforces the combinations.
type InvoiceRequest struct {
	TenantID    uuid.UUID
	Type        InvoiceType
	Series      string
	FolioNumber int64

	IssuerRFC    string
	ReceiverRFC  string
	ReceiverName string

	PaymentMethod string // PUE, PPD
	PaymentForm   string // SAT payment form code
	CFDIUse       string // SAT CFDI use code
	Currency      string

	Items []Item

	// RelatedExternalID references the invoice a credit note or payment
	// complement applies to. Required for those types, forbidden for income.
	RelatedExternalID string

	// AmountPaid is the payment complement amount. Only meaningful for
	// TypePayment.
	AmountPaid float64
}

// Validation failures returned by InvoiceRequest.Validate.
var (
	ErrUnknownInvoiceType = errors.New("unknown invoice type")
	ErrInvalidRequest     = errors.New("invalid invoice request")
	ErrMissingItems       = errors.New("invoice requires at least one item")
	ErrMissingRelated     = errors.New("related invoice reference is required")
	ErrUnexpectedRelated  = errors.New("income invoices cannot reference a related invoice")
	ErrNonPositivePayment = errors.New("payment amount must be positive")
)

// Validate checks the request is complete for its type. The outbound queue
// refuses work that fails validation so malformed requests never consume a
// dispatch slot.
func (r *InvoiceRequest) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownInvoiceType, r.Type)
	}
	if r.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant ID is required", ErrInvalidRequest)
	}
	if r.IssuerRFC == "" || r.ReceiverRFC == "" {
		return fmt.Errorf("%w: issuer and receiver RFC are required", ErrInvalidRequest)
	}

	switch r.Type {
	case TypeIncome:
		if len(r.Items) == 0 {
			return ErrMissingItems
		}
		if r.RelatedExternalID != "" {
			return ErrUnexpectedRelated
		}
	case TypeCreditNote:
		if len(r.Items) == 0 {
			return ErrMissingItems
		}
		if r.RelatedExternalID == "" {
			return ErrMissingRelated
		}
	case TypePayment:
		if r.RelatedExternalID == "" {
			return ErrMissingRelated
		}
		if r.AmountPaid <= 0 {
			return ErrNonPositivePayment
		}
	}

	for i, item := range r.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return fmt.Errorf("%w: item %d has invalid quantity or price", ErrInvalidRequest, i)
		}
	}

	return nil
}

// Total returns the request total: the sum of line amounts for income and
// credit notes, or the paid amount for payment complements.
func (r *InvoiceRequest) Total() float64 {
	if r.Type == TypePayment {
		return r.AmountPaid
	}
	var total float64
	for _, item := range r.Items {
		total += item.Amount()
	}
	return total
}

// StampResult is the provider's answer to a successful stamping call.
type StampResult struct {
	// ExternalID is the provider-assigned fiscal UUID of the stamped invoice.
	ExternalID  string
	Series      string
	FolioNumber int64
	Total       float64
	StampedAt   time.Time
}

// CatalogItem is one entry of a SAT catalog lookup (product codes, unit
// codes). Catalog reads are cheap and use the quick timeout tier.
type CatalogItem struct {
	Code        string
	Description string
}

// Certificate is a CSD key pair upload. Certificate operations are the
// slowest the provider offers and use the slow timeout tier.
type Certificate struct {
	TenantID uuid.UUID
	CerPEM   []byte
	KeyPEM   []byte
	Password string
}
