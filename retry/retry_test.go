package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryAll(error) bool { return true }

func TestExecute_SucceedsOnFirstAttempt(t *testing.T) {
	callCount := 0

	result, err := Execute(context.Background(), DefaultPolicy(), retryAll, func(context.Context) (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestExecute_SucceedsAfterRetry(t *testing.T) {
	p := Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2}
	callCount := 0

	result, err := Execute(context.Background(), p, retryAll, func(context.Context) (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestExecute_ExhaustionReturnsLastErrorVerbatim(t *testing.T) {
	p := Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2}
	callCount := 0
	testErr := errors.New("persistent error")

	_, err := Execute(context.Background(), p, retryAll, func(context.Context) (string, error) {
		callCount++
		return "", testErr
	})

	// The error must come back unchanged, not wrapped.
	if err != testErr {
		t.Errorf("expected the exact testErr, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", callCount)
	}
}

func TestExecute_NonRetryableStopsImmediately(t *testing.T) {
	p := Policy{MaxAttempts: 5, InitialDelay: time.Millisecond, Multiplier: 2}
	callCount := 0
	authErr := errors.New("auth failed")

	_, err := Execute(context.Background(), p, func(error) bool { return false }, func(context.Context) (string, error) {
		callCount++
		return "", authErr
	})

	if err != authErr {
		t.Errorf("expected the exact authErr, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 attempt, got %d", callCount)
	}
}

func TestExecute_BaseDelaySequence(t *testing.T) {
	// Scaled version of 0.5, 1, 2, 4, 5, 5 (cap) with zero jitter: the
	// reported delays are the base schedule itself.
	p := Policy{
		MaxAttempts:    7,
		InitialDelay:   time.Millisecond,
		MaxDelay:       8 * time.Millisecond,
		Multiplier:     2,
		JitterFraction: 0,
	}
	var delays []time.Duration

	_, err := ExecuteWithProgress(context.Background(), p, retryAll, func(pr Progress) {
		if !pr.Done {
			delays = append(delays, pr.NextDelay)
		}
	}, func(context.Context) (string, error) {
		return "", errors.New("fail")
	})
	if err == nil {
		t.Fatal("expected failure after exhaustion")
	}

	want := []time.Duration{
		1 * time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
		8 * time.Millisecond,
		8 * time.Millisecond,
		8 * time.Millisecond,
	}
	if len(delays) != len(want) {
		t.Fatalf("expected %d delays, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestExecute_ProgressReporting(t *testing.T) {
	p := Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2}
	var snapshots []Progress
	testErr := errors.New("fail")

	_, _ = ExecuteWithProgress(context.Background(), p, retryAll, func(pr Progress) {
		snapshots = append(snapshots, pr)
	}, func(context.Context) (string, error) {
		return "", testErr
	})

	if len(snapshots) != 3 {
		t.Fatalf("expected a snapshot per attempt, got %d", len(snapshots))
	}
	for i, pr := range snapshots {
		if pr.Attempt != i+1 {
			t.Errorf("snapshot %d: expected attempt %d, got %d", i, i+1, pr.Attempt)
		}
		if pr.Err != testErr {
			t.Errorf("snapshot %d: expected testErr, got %v", i, pr.Err)
		}
	}
	last := snapshots[len(snapshots)-1]
	if !last.Done || last.Success {
		t.Errorf("terminal snapshot should be Done without Success: %+v", last)
	}
	if last.Remaining != 0 {
		t.Errorf("terminal snapshot should have 0 remaining, got %d", last.Remaining)
	}
}

func TestExecute_ProgressOnSuccess(t *testing.T) {
	var snapshots []Progress

	result, err := ExecuteWithProgress(context.Background(), DefaultPolicy(), retryAll, func(pr Progress) {
		snapshots = append(snapshots, pr)
	}, func(context.Context) (int, error) {
		return 42, nil
	})

	if err != nil || result != 42 {
		t.Fatalf("unexpected result: %d, %v", result, err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if !snapshots[0].Done || !snapshots[0].Success {
		t.Errorf("success snapshot should be Done and Success: %+v", snapshots[0])
	}
}

func TestExecute_RespectsContext(t *testing.T) {
	p := Policy{MaxAttempts: 10, InitialDelay: 100 * time.Millisecond, Multiplier: 2}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	callCount := 0
	_, err := Execute(ctx, p, retryAll, func(context.Context) (string, error) {
		callCount++
		return "", errors.New("error")
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if callCount >= 10 {
		t.Errorf("expected cancellation before exhaustion, got %d calls", callCount)
	}
}

func TestExecuteFunc(t *testing.T) {
	p := Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 2}
	callCount := 0

	err := ExecuteFunc(context.Background(), p, retryAll, func(context.Context) error {
		callCount++
		if callCount == 1 {
			return errors.New("first fails")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if callCount != 2 {
		t.Errorf("expected 2 calls, got %d", callCount)
	}
}

func TestJitterDelay_Bounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 1000; i++ {
		d := jitterDelay(base, 0.5)
		if d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("jittered delay %v outside [50ms, 150ms]", d)
		}
	}

	if d := jitterDelay(base, 0); d != base {
		t.Errorf("zero jitter should return the base delay, got %v", d)
	}
}

func TestPolicy_WithDefaults(t *testing.T) {
	p := Policy{MaxAttempts: 0, Multiplier: 0.5, JitterFraction: 3, InitialDelay: time.Second, MaxDelay: time.Millisecond}
	n := p.withDefaults()

	if n.MaxAttempts != 1 {
		t.Errorf("expected MaxAttempts clamped to 1, got %d", n.MaxAttempts)
	}
	if n.Multiplier != 1 {
		t.Errorf("expected Multiplier clamped to 1, got %f", n.Multiplier)
	}
	if n.JitterFraction != 1 {
		t.Errorf("expected JitterFraction clamped to 1, got %f", n.JitterFraction)
	}
	if n.MaxDelay != time.Second {
		t.Errorf("expected MaxDelay raised to InitialDelay, got %v", n.MaxDelay)
	}
}
