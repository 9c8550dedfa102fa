// Package errors provides the transport error taxonomy consumed by the
// resilience layer. It implements a structured error type with machine-readable
// codes and retryable classification so retry policies can pattern-match on the
// original failure instead of a wrapped one.
package errors

import (
	"errors"
	"fmt"
)

// TransportError is the classified error type for network operations.
type TransportError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *TransportError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *TransportError) WithCause(cause error) *TransportError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *TransportError) WithDetail(key string, value any) *TransportError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new TransportError with automatic retryable detection.
func New(code ErrorCode, message string) *TransportError {
	return &TransportError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// IsRetryable reports whether err carries a retryable classification.
// Errors that are not TransportErrors report false.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// Is reports whether err is a TransportError with the given code.
func Is(err error, code ErrorCode) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Code == code
}

// --- Common Error Constructors ---

// Timeout creates a TransportError for a request that timed out.
func Timeout(operation string) *TransportError {
	return New(ErrCodeTimeout, "the request took too long").
		WithDetail("operation", operation)
}

// ConnectionLost creates a TransportError for a dropped connection.
func ConnectionLost(host string) *TransportError {
	return New(ErrCodeConnectionLost, fmt.Sprintf("connection to %s was lost", host)).
		WithDetail("host", host)
}

// NoConnectivity creates a TransportError for missing network connectivity.
func NoConnectivity() *TransportError {
	return New(ErrCodeNoConnectivity, "no network connectivity")
}

// DNSFailure creates a TransportError for a failed host lookup.
func DNSFailure(host string) *TransportError {
	return New(ErrCodeDNSFailure, fmt.Sprintf("could not resolve %s", host)).
		WithDetail("host", host)
}

// BodyExhausted creates a TransportError for a non-replayable request body.
func BodyExhausted() *TransportError {
	return New(ErrCodeBodyExhausted, "request body stream exhausted")
}

// Server creates a TransportError for a 5xx-class server failure.
func Server(statusCode int) *TransportError {
	return New(ErrCodeServer, fmt.Sprintf("server error (HTTP %d)", statusCode)).
		WithDetail("status_code", statusCode)
}

// NoData creates a TransportError for an unexpectedly empty response.
func NoData() *TransportError {
	return New(ErrCodeNoData, "server returned no data")
}

// Auth creates a TransportError for an authentication failure.
func Auth(statusCode int) *TransportError {
	return New(ErrCodeAuth, fmt.Sprintf("authentication failed (HTTP %d)", statusCode)).
		WithDetail("status_code", statusCode)
}

// Decode creates a TransportError for an undecodable response payload.
func Decode(reason string) *TransportError {
	return New(ErrCodeDecode, fmt.Sprintf("response decoding failed: %s", reason))
}

// InvalidInput creates a TransportError for invalid caller input.
func InvalidInput(field, reason string) *TransportError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("invalid input: %s", reason))
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}
