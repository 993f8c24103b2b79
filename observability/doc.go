// Package observability provides the OpenTelemetry instruments recorded by
// the container packages.
//
// Instruments are created from the global meter provider, which is a no-op
// until the host installs one:
//
//	otel.SetMeterProvider(mp)
//
//	metrics, err := observability.NewResolutionMetrics(observability.Meter(observability.MeterName))
//	metrics.RecordResolution(observability.SourceUser, observability.OutcomeHit)
package observability
