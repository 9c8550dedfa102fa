package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shieldkit/shieldkit/logger"
)

// Common limiter errors.
var (
	// ErrAdmissionTimeout is returned when the projected wait for tokens
	// exceeds the configured budget, or when the requested cost can never be
	// satisfied because it exceeds the bucket capacity.
	ErrAdmissionTimeout = errors.New("ratelimit: admission timeout")
	// ErrInvalidCost is returned when the requested cost is not positive.
	ErrInvalidCost = errors.New("ratelimit: cost must be positive")
	// ErrClosed is returned for acquisitions against a closed limiter.
	ErrClosed = errors.New("ratelimit: limiter closed")
)

// Limiter is a token-bucket admission controller with a strict-FIFO wait
// queue. Tokens refill continuously at the configured rate; each acquisition
// debits tokens equal to its declared cost. Callers whose cost cannot be
// satisfied immediately are queued and resumed in arrival order; a later,
// cheaper request is never serviced ahead of a blocked earlier one.
//
// All state is owned by a single goroutine. Public methods communicate with it
// over channels, so no mutation ever races with another.
type Limiter struct {
	reqs chan any

	closeOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
}

// Status is a read-only snapshot of limiter state, for observability only.
type Status struct {
	Tokens          float64       `json:"tokens"`
	Capacity        float64       `json:"capacity"`
	RefillRate      float64       `json:"refill_rate"`
	WaitTimeout     time.Duration `json:"wait_timeout"`
	QueueDepth      int           `json:"queue_depth"`
	SinceLastRefill time.Duration `json:"since_last_refill"`
}

type waiter struct {
	cost  float64
	ctx   context.Context
	grant chan error // buffered; the loop never blocks on delivery
}

type acquireReq struct {
	w *waiter
}

type configureReq struct {
	cfg  Config
	done chan struct{}
}

type statusReq struct {
	reply chan Status
}

// New creates a limiter and starts its worker goroutine.
// The limiter must be released with Close when no longer needed.
func New(cfg Config) *Limiter {
	cfg.ApplyDefaults()
	if cfg.Logger == nil {
		cfg.Logger = logger.WithComponent("ratelimit")
	}

	l := &Limiter{
		reqs:    make(chan any),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run(cfg)
	return l
}

// Acquire requests a single token. See AcquireN.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.AcquireN(ctx, 1)
}

// AcquireN requests cost tokens. It returns nil once the tokens have been
// debited, ErrAdmissionTimeout if the projected wait exceeds the configured
// budget (or the cost exceeds capacity), or the context error if ctx is
// cancelled while waiting.
func (l *Limiter) AcquireN(ctx context.Context, cost float64) error {
	if cost <= 0 {
		return ErrInvalidCost
	}

	w := &waiter{
		cost:  cost,
		ctx:   ctx,
		grant: make(chan error, 1),
	}

	select {
	case l.reqs <- acquireReq{w: w}:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}

	select {
	case err := <-w.grant:
		return err
	case <-ctx.Done():
		// The loop notices the cancelled context and discards the waiter
		// on its next queue pass.
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// Configure replaces the limiter policy and resets the token count to the new
// capacity. Queued waiters are kept and serviced against the new rate on the
// next refill.
func (l *Limiter) Configure(cfg Config) error {
	cfg.ApplyDefaults()
	req := configureReq{cfg: cfg, done: make(chan struct{})}

	select {
	case l.reqs <- req:
	case <-l.done:
		return ErrClosed
	}
	select {
	case <-req.done:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Status returns a consistent snapshot of the limiter state.
func (l *Limiter) Status() Status {
	req := statusReq{reply: make(chan Status, 1)}

	select {
	case l.reqs <- req:
	case <-l.done:
		return Status{}
	}
	select {
	case s := <-req.reply:
		return s
	case <-l.done:
		return Status{}
	}
}

// Close shuts down the limiter. Queued waiters fail with ErrClosed.
// Close is idempotent.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	<-l.stopped
}

// run is the limiter's single-writer loop. All bucket and queue state lives in
// its stack frame.
func (l *Limiter) run(cfg Config) {
	defer close(l.stopped)

	tokens := cfg.Capacity
	lastRefill := time.Now()
	var queue []*waiter

	var ticker *time.Ticker
	var tickC <-chan time.Time

	refill := func() {
		now := time.Now()
		elapsed := now.Sub(lastRefill).Seconds()
		lastRefill = now

		tokens += elapsed * cfg.RefillRate
		if tokens > cfg.Capacity {
			tokens = cfg.Capacity
		}
	}

	// drain services the wait queue from the head, stopping at the first
	// waiter that cannot yet be satisfied. Strict FIFO: waiters behind a
	// blocked head are never inspected.
	drain := func() {
		for len(queue) > 0 {
			w := queue[0]
			if w.ctx.Err() != nil {
				// Caller gave up; drop without debiting.
				queue = queue[1:]
				continue
			}
			if tokens < w.cost {
				break
			}
			tokens -= w.cost
			w.grant <- nil
			queue = queue[1:]
		}
	}

	// syncTicker keeps the proactive refill tick running exactly while
	// waiters are pending.
	syncTicker := func() {
		if len(queue) > 0 && ticker == nil {
			ticker = time.NewTicker(cfg.refillInterval())
			tickC = ticker.C
		} else if len(queue) == 0 && ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
		}
	}

	for {
		select {
		case msg := <-l.reqs:
			switch req := msg.(type) {
			case acquireReq:
				w := req.w
				refill()
				drain()

				switch {
				case w.cost > cfg.Capacity:
					// Can never be satisfied; reject instead of
					// queueing a waiter that would hang forever.
					w.grant <- ErrAdmissionTimeout
				case len(queue) == 0 && tokens >= w.cost:
					tokens -= w.cost
					w.grant <- nil
				default:
					waitNeeded := time.Duration((w.cost - tokens) / cfg.RefillRate * float64(time.Second))
					if waitNeeded > cfg.WaitTimeout {
						w.grant <- ErrAdmissionTimeout
					} else {
						queue = append(queue, w)
					}
				}

			case configureReq:
				old := cfg
				cfg = req.cfg
				if cfg.Logger == nil {
					cfg.Logger = old.Logger
				}
				tokens = cfg.Capacity
				lastRefill = time.Now()
				if ticker != nil {
					ticker.Reset(cfg.refillInterval())
				}
				cfg.Logger.Info("limiter reconfigured", logger.Fields(
					"capacity", cfg.Capacity,
					"refill_rate", cfg.RefillRate,
					"wait_timeout", cfg.WaitTimeout.String(),
					"queued", len(queue),
				))
				drain()
				close(req.done)

			case statusReq:
				req.reply <- Status{
					Tokens:          tokens,
					Capacity:        cfg.Capacity,
					RefillRate:      cfg.RefillRate,
					WaitTimeout:     cfg.WaitTimeout,
					QueueDepth:      len(queue),
					SinceLastRefill: time.Since(lastRefill),
				}
			}
			syncTicker()

		case <-tickC:
			refill()
			drain()
			syncTicker()

		case <-l.done:
			if ticker != nil {
				ticker.Stop()
			}
			for _, w := range queue {
				w.grant <- ErrClosed
			}
			return
		}
	}
}
