// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OTel meter provider and the analysis instruments.
// The prometheus exporter feeds the same registry the worker manager serves
// on /metrics.
type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	analysisCounter  otelmetric.Int64Counter
	analysisDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	analysisCounter, _ := meter.Int64Counter(
		"messages.analyzed",
		otelmetric.WithDescription("Number of messages analyzed"),
	)

	analysisDuration, _ := meter.Float64Histogram(
		"analysis.duration",
		otelmetric.WithDescription("Message analysis duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		analysisCounter:  analysisCounter,
		analysisDuration: analysisDuration,
	}
}

// RecordAnalysis records one completed analysis with its intent label and
// route.
func (o *Observability) RecordAnalysis(ctx context.Context, intent string, route string, duration time.Duration) {
	if o.analysisCounter != nil {
		o.analysisCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("route", route),
		))
	}
	if o.analysisDuration != nil {
		o.analysisDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("route", route),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
