package retry

import (
	"context"
	"math/rand"
	"time"
)

// ShouldRetry decides whether a failed attempt may be retried.
type ShouldRetry func(error) bool

// Progress is a read-only snapshot emitted once per attempt. Callers can use
// it to drive UI or logging without altering the retry control flow.
type Progress struct {
	// Attempt is the 1-indexed attempt that just finished.
	Attempt int
	// Remaining is the number of attempts left after this one.
	Remaining int
	// NextDelay is the jittered delay before the next attempt, zero when done.
	NextDelay time.Duration
	// Err is the error observed on this attempt, nil on success.
	Err error
	// Done reports whether execution has finished, successfully or not.
	Done bool
	// Success reports whether the operation succeeded.
	Success bool
}

// Execute invokes op, retrying on transient failure with exponential backoff
// and jitter. On success the value is returned immediately. After exhaustion,
// or on an error shouldRetry rejects, the last observed error is returned
// verbatim so callers can pattern-match on the original failure. A nil
// shouldRetry uses DefaultShouldRetry.
//
// Execution is bounded only by the policy (worst case MaxAttempts x MaxDelay)
// and by ctx, which is honored both between attempts and during delays.
func Execute[T any](ctx context.Context, p Policy, shouldRetry ShouldRetry, op func(context.Context) (T, error)) (T, error) {
	return ExecuteWithProgress(ctx, p, shouldRetry, nil, op)
}

// ExecuteFunc is Execute for operations that return only an error.
func ExecuteFunc(ctx context.Context, p Policy, shouldRetry ShouldRetry, op func(context.Context) error) error {
	_, err := Execute(ctx, p, shouldRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// ExecuteWithProgress is Execute with a per-attempt progress callback.
// onProgress is invoked on every attempt, including the terminal one
// (Done=true). A nil onProgress skips reporting.
func ExecuteWithProgress[T any](ctx context.Context, p Policy, shouldRetry ShouldRetry, onProgress func(Progress), op func(context.Context) (T, error)) (T, error) {
	var zero T

	p = p.withDefaults()
	if shouldRetry == nil {
		shouldRetry = DefaultShouldRetry
	}

	report := func(pr Progress) {
		if onProgress != nil {
			onProgress(pr)
		}
	}

	delay := p.InitialDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := op(ctx)
		if err == nil {
			report(Progress{
				Attempt:   attempt,
				Remaining: p.MaxAttempts - attempt,
				Done:      true,
				Success:   true,
			})
			return result, nil
		}

		if attempt == p.MaxAttempts || !shouldRetry(err) {
			report(Progress{
				Attempt:   attempt,
				Remaining: p.MaxAttempts - attempt,
				Err:       err,
				Done:      true,
			})
			return zero, err
		}

		// Jitter perturbs the current delay; the multiplier and cap advance
		// the base delay for the following attempt only, so the jittered
		// value can transiently exceed MaxDelay.
		actual := jitterDelay(delay, p.JitterFraction)

		report(Progress{
			Attempt:   attempt,
			Remaining: p.MaxAttempts - attempt,
			NextDelay: actual,
			Err:       err,
		})

		timer := time.NewTimer(actual)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	// Unreachable: the loop always returns on the final attempt.
	return zero, ctx.Err()
}

// jitterDelay applies a uniform random perturbation in [-fraction, +fraction]
// to the given delay, floored at zero.
func jitterDelay(delay time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return delay
	}
	jitter := (rand.Float64()*2 - 1) * fraction
	actual := float64(delay) + float64(delay)*jitter
	if actual < 0 {
		actual = 0
	}
	return time.Duration(actual)
}
