package pac_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio/pkg/pac"
)

func validIncomeRequest() *pac.InvoiceRequest {
	return &pac.InvoiceRequest{
		TenantID:    uuid.New(),
		Type:        pac.TypeIncome,
		Series:      "A",
		IssuerRFC:   "XAXX010101000",
		ReceiverRFC: "XEXX010101000",
		Items: []pac.Item{
			{ProductCode: "81112500", UnitCode: "E48", Description: "Consultoría", Quantity: 2, UnitPrice: 1500},
		},
	}
}

func TestInvoiceRequestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid income request", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, validIncomeRequest().Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		req := validIncomeRequest()
		req.Type = "donation"
		assert.ErrorIs(t, req.Validate(), pac.ErrUnknownInvoiceType)
	})

	t.Run("income without items", func(t *testing.T) {
		t.Parallel()
		req := validIncomeRequest()
		req.Items = nil
		assert.ErrorIs(t, req.Validate(), pac.ErrMissingItems)
	})

	t.Run("income with related reference", func(t *testing.T) {
		t.Parallel()
		req := validIncomeRequest()
		req.RelatedExternalID = uuid.NewString()
		assert.ErrorIs(t, req.Validate(), pac.ErrUnexpectedRelated)
	})

	t.Run("credit note requires related invoice", func(t *testing.T) {
		t.Parallel()
		req := validIncomeRequest()
		req.Type = pac.TypeCreditNote
		assert.ErrorIs(t, req.Validate(), pac.ErrMissingRelated)

		req.RelatedExternalID = uuid.NewString()
		assert.NoError(t, req.Validate())
	})

	t.Run("payment requires related invoice and positive amount", func(t *testing.T) {
		t.Parallel()
		req := &pac.InvoiceRequest{
			TenantID:    uuid.New(),
			Type:        pac.TypePayment,
			IssuerRFC:   "XAXX010101000",
			ReceiverRFC: "XEXX010101000",
		}
		assert.ErrorIs(t, req.Validate(), pac.ErrMissingRelated)

		req.RelatedExternalID = uuid.NewString()
		assert.ErrorIs(t, req.Validate(), pac.ErrNonPositivePayment)

		req.AmountPaid = 3480
		assert.NoError(t, req.Validate())
	})

	t.Run("invalid line quantity", func(t *testing.T) {
		t.Parallel()
		req := validIncomeRequest()
		req.Items[0].Quantity = 0
		assert.ErrorIs(t, req.Validate(), pac.ErrInvalidRequest)
	})
}

func TestInvoiceRequestTotal(t *testing.T) {
	t.Parallel()

	req := validIncomeRequest()
	req.Items = append(req.Items, pac.Item{Quantity: 1, UnitPrice: 480})
	assert.InDelta(t, 3480.0, req.Total(), 0.001)

	payment := &pac.InvoiceRequest{Type: pac.TypePayment, AmountPaid: 999.99}
	assert.InDelta(t, 999.99, payment.Total(), 0.001)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	transient := []error{
		pac.ErrUnavailable,
		fmt.Errorf("call failed: %w", pac.ErrUnavailable),
		context.DeadlineExceeded,
		&net.OpError{Op: "dial", Err: errors.New("connection reset")},
		&net.DNSError{Err: "no such host", Name: "pac.example.com"},
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
	}
	for _, err := range transient {
		assert.True(t, pac.IsTransient(err), "expected transient: %v", err)
	}

	terminal := []error{
		nil,
		errors.New("something else entirely"),
		&pac.RejectionError{Code: "CFDI33132", Message: "RFC del receptor no registrado"},
		fmt.Errorf("stamping: %w", &pac.RejectionError{Code: "301", Message: "XML mal formado"}),
		context.Canceled,
	}
	for _, err := range terminal {
		assert.False(t, pac.IsTransient(err), "expected terminal: %v", err)
	}
}
