package client

import (
	"errors"
	"testing"
	"time"
)

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 3, Timeout: time.Minute})

	testErr := errors.New("upstream down")
	for i := 0; i < 3; i++ {
		if !b.Allow() {
			t.Fatalf("request %d should be allowed while closed", i)
		}
		b.Record(testErr)
	}

	if b.State() != BreakerOpen {
		t.Errorf("expected open state, got %s", b.State())
	}
	if b.Allow() {
		t.Error("open breaker should block requests")
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 2, Timeout: time.Minute})

	testErr := errors.New("blip")
	b.Record(testErr)
	b.Record(nil)
	b.Record(testErr)

	if b.State() != BreakerClosed {
		t.Errorf("interleaved success should keep the breaker closed, got %s", b.State())
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 1, Timeout: 20 * time.Millisecond})

	b.Record(errors.New("down"))
	if b.State() != BreakerOpen {
		t.Fatalf("expected open state, got %s", b.State())
	}

	time.Sleep(30 * time.Millisecond)

	if b.State() != BreakerHalfOpen {
		t.Fatalf("expected half-open after cool-down, got %s", b.State())
	}
	if !b.Allow() {
		t.Fatal("half-open breaker should allow a probe")
	}
	if b.Allow() {
		t.Error("half-open breaker should limit probes")
	}

	b.Record(nil)
	if b.State() != BreakerClosed {
		t.Errorf("successful probe should close the breaker, got %s", b.State())
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 1, Timeout: 20 * time.Millisecond})

	b.Record(errors.New("down"))
	time.Sleep(30 * time.Millisecond)

	if !b.Allow() {
		t.Fatal("half-open breaker should allow a probe")
	}
	b.Record(errors.New("still down"))

	if b.State() != BreakerOpen {
		t.Errorf("failed probe should reopen the breaker, got %s", b.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 1, Timeout: time.Minute})

	b.Record(errors.New("down"))
	b.Reset()

	if b.State() != BreakerClosed {
		t.Errorf("expected closed after reset, got %s", b.State())
	}
	if !b.Allow() {
		t.Error("reset breaker should allow requests")
	}
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	var transitions []string
	b := NewBreaker(BreakerConfig{
		Name:        "test",
		MaxFailures: 1,
		Timeout:     time.Minute,
		OnStateChange: func(name string, from, to BreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	b.Record(errors.New("down"))

	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Errorf("unexpected transitions: %v", transitions)
	}
}
