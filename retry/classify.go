package retry

import (
	"context"
	goerrors "errors"
	"io"
	"net"
	"syscall"

	"github.com/shieldkit/shieldkit/errors"
)

// DefaultShouldRetry classifies errors for the common remote-API workload.
//
// Retryable: transport failures (timeouts, dropped or refused connections,
// DNS failures, exhausted request bodies), 5xx-class server errors, and empty
// responses. Not retryable: authentication failures, response-decoding
// failures, context cancellation, and anything unclassified.
func DefaultShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation is a caller decision, never a transient fault.
	if goerrors.Is(err, context.Canceled) || goerrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Classified transport errors carry their own verdict.
	var te *errors.TransportError
	if goerrors.As(err, &te) {
		return te.Retryable
	}

	// Unclassified network-level failures.
	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if goerrors.As(err, &dnsErr) {
		return true
	}
	if goerrors.Is(err, syscall.ECONNREFUSED) ||
		goerrors.Is(err, syscall.ECONNRESET) ||
		goerrors.Is(err, syscall.EPIPE) {
		return true
	}
	if goerrors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	return false
}
