package pac

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrUnavailable marks provider-side failures that are expected to clear on
// their own (maintenance windows, 5xx-equivalent responses). Adapters wrap
// such responses with this sentinel so IsTransient classifies them correctly.
var ErrUnavailable = errors.New("invoicing provider unavailable")

// RejectionError is a terminal answer from the provider: the request was
// received, evaluated, and refused. Retrying an identical request cannot
// succeed.
type RejectionError struct {
	Code    string // provider error code, e.g. "CFDI33132"
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("provider rejected request: %s: %s", e.Code, e.Message)
}

// IsTransient reports whether err represents a failure that may succeed on
// retry. Rejections are always terminal; network-level trouble, timeouts and
// provider unavailability are transient. Unknown errors are treated as
// terminal so a misclassified bug never loops forever.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return false
	}

	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	return false
}
