// Package retry executes operations with exponential backoff and jitter.
//
// The backoff schedule starts at Policy.InitialDelay and multiplies after
// each attempt, capped at Policy.MaxDelay. Jitter is applied to the current
// delay only; a jittered delay can transiently exceed the cap. Errors are
// returned to the caller unchanged, so the failure observed after exhaustion
// is the last error the operation itself produced.
//
//	result, err := retry.Execute(ctx, retry.DefaultPolicy(), nil, func(ctx context.Context) ([]byte, error) {
//	    return fetchProfile(ctx)
//	})
package retry
