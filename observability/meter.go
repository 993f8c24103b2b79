package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope used for container metrics.
const MeterName = "github.com/kbukum/ioc"

// Resolution sources.
const (
	SourceUser    = "user"
	SourceDefault = "default"
)

// Resolution outcomes.
const (
	OutcomeHit           = "hit"
	OutcomeFalsy         = "falsy"
	OutcomeError         = "error"
	OutcomeFallbackFalsy = "fallback_falsy"
	OutcomeFallbackError = "fallback_error"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ResolutionMetrics holds the instruments for container lookups.
// A nil *ResolutionMetrics records nothing.
type ResolutionMetrics struct {
	resolutions metric.Int64Counter
}

// NewResolutionMetrics creates metric instruments on the given meter.
func NewResolutionMetrics(meter metric.Meter) (*ResolutionMetrics, error) {
	resolutions, err := meter.Int64Counter("ioc.resolutions",
		metric.WithDescription("Number of container lookups by source and outcome"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ioc.resolutions counter: %w", err)
	}
	return &ResolutionMetrics{resolutions: resolutions}, nil
}

// RecordResolution counts one lookup answered by source with the given outcome.
func (m *ResolutionMetrics) RecordResolution(source, outcome string) {
	if m == nil {
		return
	}
	m.resolutions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
}
