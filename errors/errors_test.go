package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew_RetryableDetection(t *testing.T) {
	if e := New(ErrCodeTimeout, "timed out"); !e.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if e := New(ErrCodeAuth, "unauthorized"); e.Retryable {
		t.Error("AUTH_FAILED should not be retryable")
	}
	if e := New(ErrCodeDecode, "bad json"); e.Retryable {
		t.Error("DECODE_FAILED should not be retryable")
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("socket closed")
	e := ConnectionLost("api.example.com").WithCause(cause)

	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if e.Error() == "" {
		t.Error("expected non-empty error string")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(Server(503)) {
		t.Error("server error should be retryable")
	}
	if IsRetryable(Auth(401)) {
		t.Error("auth error should not be retryable")
	}
	if IsRetryable(errors.New("plain error")) {
		t.Error("plain error should not be retryable")
	}
}

func TestIsRetryable_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("request failed: %w", NoData())
	if !IsRetryable(wrapped) {
		t.Error("wrapped NO_DATA should still be retryable")
	}
}

func TestIs(t *testing.T) {
	err := DNSFailure("api.example.com")
	if !Is(err, ErrCodeDNSFailure) {
		t.Error("expected DNS_FAILURE code match")
	}
	if Is(err, ErrCodeTimeout) {
		t.Error("unexpected TIMEOUT code match")
	}
	if Is(errors.New("plain"), ErrCodeTimeout) {
		t.Error("plain error should not match any code")
	}
}

func TestConstructors_Details(t *testing.T) {
	e := Server(502)
	if e.Details["status_code"] != 502 {
		t.Errorf("expected status_code detail 502, got %v", e.Details["status_code"])
	}

	e = InvalidInput("ttl", "must be positive")
	if e.Details["field"] != "ttl" {
		t.Errorf("expected field detail, got %v", e.Details["field"])
	}
}
