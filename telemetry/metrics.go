package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metric instruments for the resilience layer. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	admissionGranted metric.Int64Counter
	admissionTimeout metric.Int64Counter
	admissionWait    metric.Float64Histogram
	retryAttempts    metric.Int64Counter
	cacheHits        metric.Int64Counter
	cacheMisses      metric.Int64Counter
	requestTotal     metric.Int64Counter
	requestDuration  metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	admissionGranted, err := meter.Int64Counter("admission.granted",
		metric.WithDescription("Requests admitted by the rate limiter"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating admission.granted counter: %w", err)
	}

	admissionTimeout, err := meter.Int64Counter("admission.timeout",
		metric.WithDescription("Requests rejected because the projected wait exceeded the budget"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating admission.timeout counter: %w", err)
	}

	admissionWait, err := meter.Float64Histogram("admission.wait",
		metric.WithDescription("Time spent waiting for admission in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating admission.wait histogram: %w", err)
	}

	retryAttempts, err := meter.Int64Counter("retry.attempts",
		metric.WithDescription("Operation attempts, including the first"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retry.attempts counter: %w", err)
	}

	cacheHits, err := meter.Int64Counter("cache.hits",
		metric.WithDescription("Cache retrievals that returned stored bytes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache.hits counter: %w", err)
	}

	cacheMisses, err := meter.Int64Counter("cache.misses",
		metric.WithDescription("Cache retrievals that missed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache.misses counter: %w", err)
	}

	requestTotal, err := meter.Int64Counter("request.total",
		metric.WithDescription("Requests through the resilient client"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("request.duration",
		metric.WithDescription("End-to-end request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}

	return &Metrics{
		admissionGranted: admissionGranted,
		admissionTimeout: admissionTimeout,
		admissionWait:    admissionWait,
		retryAttempts:    retryAttempts,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
	}, nil
}

// RecordAdmission records the outcome and wait time of an admission attempt.
func (m *Metrics) RecordAdmission(ctx context.Context, granted bool, wait time.Duration) {
	if m == nil {
		return
	}
	if granted {
		m.admissionGranted.Add(ctx, 1)
	} else {
		m.admissionTimeout.Add(ctx, 1)
	}
	m.admissionWait.Record(ctx, wait.Seconds())
}

// RecordRetryAttempt records one operation attempt.
func (m *Metrics) RecordRetryAttempt(ctx context.Context) {
	if m == nil {
		return
	}
	m.retryAttempts.Add(ctx, 1)
}

// RecordCacheLookup records a cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Add(ctx, 1)
	} else {
		m.cacheMisses.Add(ctx, 1)
	}
}

// RecordRequest records a completed client request with its outcome status.
func (m *Metrics) RecordRequest(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrStatus, status))
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
}
