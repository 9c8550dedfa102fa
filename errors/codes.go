package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport-level failures (retryable).
const (
	// ErrCodeTimeout indicates the request or connection timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeConnectionLost indicates an established connection was dropped.
	ErrCodeConnectionLost ErrorCode = "CONNECTION_LOST"
	// ErrCodeNoConnectivity indicates no network connectivity is available.
	ErrCodeNoConnectivity ErrorCode = "NO_CONNECTIVITY"
	// ErrCodeDNSFailure indicates host name resolution failed.
	ErrCodeDNSFailure ErrorCode = "DNS_FAILURE"
	// ErrCodeBodyExhausted indicates the request body stream was consumed and
	// cannot be replayed.
	ErrCodeBodyExhausted ErrorCode = "REQUEST_BODY_EXHAUSTED"
	// ErrCodeServer indicates a server-side (5xx-class) failure.
	ErrCodeServer ErrorCode = "SERVER_ERROR"
	// ErrCodeNoData indicates the server returned an empty response where a
	// payload was expected.
	ErrCodeNoData ErrorCode = "NO_DATA"
)

// Terminal failures (not retryable).
const (
	// ErrCodeAuth indicates an authentication or authorization failure.
	ErrCodeAuth ErrorCode = "AUTH_FAILED"
	// ErrCodeDecode indicates the response payload could not be decoded.
	ErrCodeDecode ErrorCode = "DECODE_FAILED"
	// ErrCodeInvalidInput indicates the caller supplied invalid input.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Resilience-layer internal codes.
const (
	// ErrCodeAdmissionTimeout indicates the projected wait for rate-limit
	// admission exceeded the configured budget.
	ErrCodeAdmissionTimeout ErrorCode = "ADMISSION_TIMEOUT"
	// ErrCodeCacheCorruption indicates an unreadable cache backing file.
	// Never surfaced to callers; the cache repairs the entry and reports a miss.
	ErrCodeCacheCorruption ErrorCode = "CACHE_CORRUPTION"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:        true,
	ErrCodeConnectionLost: true,
	ErrCodeNoConnectivity: true,
	ErrCodeDNSFailure:     true,
	ErrCodeBodyExhausted:  true,
	ErrCodeServer:         true,
	ErrCodeNoData:         true,
}

// IsRetryableCode reports whether operations failing with this code may be retried.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
