// Package observability provides OpenTelemetry metrics (Prometheus exporter)
// and slog integration for request-scoped context.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	defaultServiceName = "bookfinder-recommender"
	cardinalityLimit   = 2000
)

// latencyHistogramBoundaries are Prometheus-style buckets (seconds) for request duration histograms.
var latencyHistogramBoundaries = []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5}

// APIMetrics records HTTP request counts and durations.
type APIMetrics interface {
	RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration)
}

// CacheMetrics records cache hit/miss outcomes per named cache.
type CacheMetrics interface {
	RecordHit(ctx context.Context, cache string)
	RecordMiss(ctx context.Context, cache string)
}

// ExplainMetrics records which summary tier produced each explanation.
type ExplainMetrics interface {
	RecordSummaryTier(ctx context.Context, tier string)
}

// ClusterMetrics records cluster cache recomputation outcomes.
type ClusterMetrics interface {
	RecordRecompute(ctx context.Context, outcome string)
}

// Metrics bundles the per-concern metric recorders. Any field may be nil when
// metrics are disabled; call sites must tolerate nil.
type Metrics struct {
	API     APIMetrics
	Cache   CacheMetrics
	Explain ExplainMetrics
	Cluster ClusterMetrics
}

// MeterProviderShutdown is the subset of the SDK MeterProvider needed for shutdown.
type MeterProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// MeterProviderConfig holds configuration for creating the MeterProvider and metrics.
type MeterProviderConfig struct {
	// ServiceName is used in the resource (default: bookfinder-recommender).
	ServiceName string
}

// NewMeterProvider creates a MeterProvider with a Prometheus exporter and
// returns the provider, an HTTP handler for /metrics, and the wired Metrics.
// Caller must call provider.Shutdown on exit.
func NewMeterProvider(_ context.Context, cfg MeterProviderConfig) (MeterProviderShutdown, http.Handler, *Metrics, error) {
	serviceNameVal := cfg.ServiceName
	if serviceNameVal == "" {
		serviceNameVal = defaultServiceName
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceNameVal),
	)

	reg := prometheus.NewRegistry()

	exporter, err := prometheusexporter.New(
		prometheusexporter.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
		sdkmetric.WithCardinalityLimit(cardinalityLimit),
		sdkmetric.WithView(
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: "http.server.duration"},
				sdkmetric.Stream{
					Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
						Boundaries: latencyHistogramBoundaries,
					},
				},
			),
		),
	)

	meter := mp.Meter("recommender")

	metrics, err := newMetrics(meter)
	if err != nil {
		if shutdownErr := mp.Shutdown(context.Background()); shutdownErr != nil {
			err = fmt.Errorf("%w (and meter provider shutdown failed: %w)", err, shutdownErr)
		}

		return nil, nil, nil, err
	}

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	return mp, handler, metrics, nil
}

type meterMetrics struct {
	requestCount     metric.Int64Counter
	requestDuration  metric.Float64Histogram
	cacheRequests    metric.Int64Counter
	summaryTiers     metric.Int64Counter
	clusterRecompute metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &meterMetrics{}

	var err error

	m.requestCount, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of HTTP requests"))
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}

	m.requestDuration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create request duration histogram: %w", err)
	}

	m.cacheRequests, err = meter.Int64Counter("cache.requests",
		metric.WithDescription("Cache lookups by cache name and result"))
	if err != nil {
		return nil, fmt.Errorf("create cache counter: %w", err)
	}

	m.summaryTiers, err = meter.Int64Counter("explanation.summary.tier.count",
		metric.WithDescription("Explanations produced by summary tier"))
	if err != nil {
		return nil, fmt.Errorf("create summary tier counter: %w", err)
	}

	m.clusterRecompute, err = meter.Int64Counter("cluster.cache.recompute.count",
		metric.WithDescription("Cluster cache recomputations by outcome"))
	if err != nil {
		return nil, fmt.Errorf("create cluster recompute counter: %w", err)
	}

	return &Metrics{API: m, Cache: m, Explain: m, Cluster: m}, nil
}

// RecordRequest implements APIMetrics.
func (m *meterMetrics) RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_class", statusClass),
	)
	m.requestCount.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordHit implements CacheMetrics.
func (m *meterMetrics) RecordHit(ctx context.Context, cache string) {
	m.cacheRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", cache),
		attribute.String("result", "hit"),
	))
}

// RecordMiss implements CacheMetrics.
func (m *meterMetrics) RecordMiss(ctx context.Context, cache string) {
	m.cacheRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", cache),
		attribute.String("result", "miss"),
	))
}

// RecordSummaryTier implements ExplainMetrics.
func (m *meterMetrics) RecordSummaryTier(ctx context.Context, tier string) {
	m.summaryTiers.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}

// RecordRecompute implements ClusterMetrics.
func (m *meterMetrics) RecordRecompute(ctx context.Context, outcome string) {
	m.clusterRecompute.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
