package client

import (
	"errors"
	"sync"
	"time"
)

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	// BreakerClosed allows requests to pass through.
	BreakerClosed BreakerState = iota
	// BreakerOpen blocks all requests.
	BreakerOpen
	// BreakerHalfOpen allows limited requests to test recovery.
	BreakerHalfOpen
)

// String returns the state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned when the circuit is open and requests fail fast.
var ErrBreakerOpen = errors.New("client: circuit breaker is open")

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker for metrics/logging.
	Name string
	// MaxFailures is the number of consecutive failures before opening.
	MaxFailures int
	// Timeout is how long to wait before transitioning from open to half-open.
	Timeout time.Duration
	// HalfOpenMaxCalls is the number of calls allowed in half-open state.
	HalfOpenMaxCalls int
	// OnStateChange is called when state changes.
	OnStateChange func(name string, from, to BreakerState)
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// Breaker prevents hammering a failing upstream by failing fast once too many
// consecutive failures are observed, then probing for recovery after a
// cool-down.
type Breaker struct {
	config BreakerConfig

	mu              sync.Mutex
	state           BreakerState
	failures        int
	successes       int
	lastFailureTime time.Time
	halfOpenCalls   int
}

// NewBreaker creates a new circuit breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}

	return &Breaker{
		config: config,
		state:  BreakerClosed,
	}
}

// Allow reports whether a request may proceed, reserving a probe slot when
// half-open.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState() {
	case BreakerClosed:
		return true
	case BreakerOpen:
		return false
	case BreakerHalfOpen:
		if b.halfOpenCalls < b.config.HalfOpenMaxCalls {
			b.halfOpenCalls++
			return true
		}
		return false
	default:
		return false
	}
}

// Record feeds the outcome of an allowed request back into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentState()

	if err != nil {
		b.failures++
		b.lastFailureTime = time.Now()

		switch state {
		case BreakerClosed:
			if b.failures >= b.config.MaxFailures {
				b.toState(BreakerOpen)
			}
		case BreakerHalfOpen:
			// A failed probe reopens the circuit.
			b.toState(BreakerOpen)
		}
		return
	}

	switch state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.config.HalfOpenMaxCalls {
			b.toState(BreakerClosed)
			b.failures = 0
		}
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// Reset returns the breaker to the closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toState(BreakerClosed)
	b.failures = 0
	b.successes = 0
	b.halfOpenCalls = 0
}

// currentState resolves the effective state, transitioning open to half-open
// once the cool-down has elapsed. Callers must hold b.mu.
func (b *Breaker) currentState() BreakerState {
	if b.state == BreakerOpen && time.Since(b.lastFailureTime) >= b.config.Timeout {
		b.toState(BreakerHalfOpen)
	}
	return b.state
}

// toState transitions the breaker, resetting per-state counters.
// Callers must hold b.mu.
func (b *Breaker) toState(next BreakerState) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.successes = 0
	b.halfOpenCalls = 0

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.config.Name, prev, next)
	}
}
