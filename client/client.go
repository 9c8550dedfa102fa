package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shieldkit/shieldkit/cache"
	"github.com/shieldkit/shieldkit/logger"
	"github.com/shieldkit/shieldkit/ratelimit"
	"github.com/shieldkit/shieldkit/retry"
	"github.com/shieldkit/shieldkit/telemetry"
)

// Operation is one unit of work against the remote API: typically a single
// request issued by the caller's own transport.
type Operation func(ctx context.Context) ([]byte, error)

// Config configures a Client. The limiter, cache, breaker, and metrics are
// all optional; a nil field disables that stage. The client does not own the
// injected components — callers hold the references and close them.
type Config struct {
	// Name identifies this client for metrics/logging.
	Name string
	// Limiter gates entry into every operation.
	Limiter *ratelimit.Limiter
	// Cache serves stored responses and is populated on success by Fetch.
	Cache *cache.Cache
	// Breaker fails fast when the upstream is persistently unhealthy.
	Breaker *Breaker
	// Policy is the retry schedule applied to operations.
	Policy retry.Policy
	// ShouldRetry classifies failures. Nil uses retry.DefaultShouldRetry.
	ShouldRetry retry.ShouldRetry
	// Metrics receives instrumentation. Nil records nothing.
	Metrics *telemetry.Metrics
	// Logger receives structured request events. Nil uses the global logger.
	Logger *logger.Logger
}

// Client composes admission control, retry, and caching around operations
// supplied by the caller. Failures propagate unchanged: callers see either a
// result, ratelimit.ErrAdmissionTimeout, ErrBreakerOpen, or the last error
// the operation itself produced.
type Client struct {
	cfg Config
	log *logger.Logger
}

// Status aggregates the component snapshots, for observability only.
type Status struct {
	RateLimit *ratelimit.Status `json:"ratelimit,omitempty"`
	Cache     *cache.Status     `json:"cache,omitempty"`
	Breaker   string            `json:"breaker,omitempty"`
}

// New creates a resilient client.
func New(cfg Config) *Client {
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = retry.DefaultShouldRetry
	}
	log := cfg.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if cfg.Name != "" {
		log = log.WithComponent(cfg.Name)
	}
	return &Client{cfg: cfg, log: log}
}

// Do runs op through admission control and retry.
func (c *Client) Do(ctx context.Context, op Operation) ([]byte, error) {
	requestID := uuid.NewString()
	start := time.Now()

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanClientDo)
	defer span.End()

	if c.cfg.Limiter != nil {
		admissionStart := time.Now()
		err := c.cfg.Limiter.Acquire(ctx)
		c.cfg.Metrics.RecordAdmission(ctx, err == nil, time.Since(admissionStart))
		if err != nil {
			c.cfg.Metrics.RecordRequest(ctx, "admission_timeout", time.Since(start))
			telemetry.SetSpanError(ctx, err)
			c.log.Warn("request rejected by admission control", logger.Fields(
				logger.FieldRequestID, requestID,
				logger.FieldError, err.Error(),
			))
			return nil, err
		}
	}

	if c.cfg.Breaker != nil && !c.cfg.Breaker.Allow() {
		c.cfg.Metrics.RecordRequest(ctx, "circuit_open", time.Since(start))
		telemetry.SetSpanError(ctx, ErrBreakerOpen)
		return nil, ErrBreakerOpen
	}

	attempts := 0
	result, err := retry.ExecuteWithProgress(ctx, c.cfg.Policy, c.cfg.ShouldRetry, func(pr retry.Progress) {
		attempts = pr.Attempt
		c.cfg.Metrics.RecordRetryAttempt(ctx)
		if pr.Err != nil && !pr.Done {
			c.log.Debug("attempt failed, backing off", logger.Fields(
				logger.FieldRequestID, requestID,
				logger.FieldAttempt, pr.Attempt,
				"next_delay", pr.NextDelay.String(),
				logger.FieldError, pr.Err.Error(),
			))
		}
	}, op)

	if c.cfg.Breaker != nil {
		c.cfg.Breaker.Record(err)
	}

	status := "ok"
	if err != nil {
		status = "error"
		telemetry.SetSpanError(ctx, err)
		c.log.Warn("request failed", logger.Fields(
			logger.FieldRequestID, requestID,
			logger.FieldAttempt, attempts,
			logger.FieldError, err.Error(),
		))
	}
	c.cfg.Metrics.RecordRequest(ctx, status, time.Since(start))

	return result, err
}

// Fetch serves key from the cache when possible; otherwise it runs op through
// Do and stores a successful result under key with the given ttl (a
// non-positive ttl uses the cache default). Cache storage failures are logged
// and swallowed — the caller still receives the fresh result.
func (c *Client) Fetch(ctx context.Context, key string, ttl time.Duration, op Operation) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanClientFetch)
	defer span.End()

	if c.cfg.Cache != nil {
		if data, ok := c.cfg.Cache.Retrieve(key); ok {
			c.cfg.Metrics.RecordCacheLookup(ctx, true)
			return data, nil
		}
		c.cfg.Metrics.RecordCacheLookup(ctx, false)
	}

	data, err := c.Do(ctx, op)
	if err != nil {
		return nil, err
	}

	if c.cfg.Cache != nil {
		if err := c.cfg.Cache.StoreTTL(key, data, ttl); err != nil {
			c.log.Warn("failed to cache response", logger.Fields(
				logger.FieldKey, key,
				logger.FieldError, err.Error(),
			))
		}
	}
	return data, nil
}

// Status returns snapshots of the wired components.
func (c *Client) Status() Status {
	var s Status
	if c.cfg.Limiter != nil {
		rs := c.cfg.Limiter.Status()
		s.RateLimit = &rs
	}
	if c.cfg.Cache != nil {
		cs := c.cfg.Cache.Status()
		s.Cache = &cs
	}
	if c.cfg.Breaker != nil {
		s.Breaker = c.cfg.Breaker.State().String()
	}
	return s
}
