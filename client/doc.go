// Package client composes the resilience primitives — admission control,
// retry with backoff, response caching, and an optional circuit breaker —
// around operations supplied by the caller's own transport.
//
//	rl := ratelimit.New(ratelimit.DefaultConfig("api"))
//	cc, _ := cache.New(cache.DefaultConfig("/var/cache/api"))
//	defer rl.Close()
//	defer cc.Close()
//
//	cl := client.New(client.Config{
//	    Name:    "api",
//	    Limiter: rl,
//	    Cache:   cc,
//	    Policy:  retry.DefaultPolicy(),
//	})
//
//	body, err := cl.Fetch(ctx, "profile:42", 10*time.Minute, func(ctx context.Context) ([]byte, error) {
//	    return transport.GetProfile(ctx, 42)
//	})
//
// The client holds references to injected components but does not own their
// lifecycle; callers create and close them.
package client
