// Package telemetry provides OpenTelemetry tracing and metrics for the
// resilience layer.
//
// Tracing:
//
//	tp, err := telemetry.InitTracer(ctx, telemetry.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := telemetry.InitMeter(ctx, telemetry.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := telemetry.NewMetrics(telemetry.Meter("my-service"))
//	metrics.RecordCacheLookup(ctx, true)
//
// All Metrics record methods are safe on a nil receiver, so instrumentation
// can be left unwired in tests and simple deployments.
package telemetry
