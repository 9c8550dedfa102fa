// Package ratelimit provides token-bucket admission control with a fair
// waiting queue.
//
// Unlike a plain token bucket, acquisitions that cannot be satisfied
// immediately suspend the caller in a strict-FIFO queue serviced by a
// proactive refill tick, so a large request is never starved by a stream of
// smaller ones arriving behind it. Requests whose projected wait exceeds the
// configured budget, or whose cost exceeds the bucket capacity outright, fail
// fast with ErrAdmissionTimeout instead of queueing.
//
//	rl := ratelimit.New(ratelimit.Config{Capacity: 20, RefillRate: 10, WaitTimeout: 5 * time.Second})
//	defer rl.Close()
//
//	if err := rl.Acquire(ctx); err != nil {
//	    return err // ErrAdmissionTimeout or ctx error
//	}
//	resp, err := callAPI(ctx)
package ratelimit
