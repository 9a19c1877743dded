package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// DefaultExportInterval is the OTLP metric push interval
const DefaultExportInterval = 60 * time.Second

// MeterProvider wraps the OpenTelemetry MeterProvider. Instruments are always
// readable through the Prometheus handler; OTLP push is added when enabled.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry
	logger   *zap.Logger
	config   Config
}

// NewMeterProvider creates the meter provider and registers it globally.
func NewMeterProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*MeterProvider, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	promExporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	}

	if cfg.Enabled {
		exporterOpts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
		}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultExportInterval)),
		))
	}

	mp := &MeterProvider{
		provider: sdkmetric.NewMeterProvider(opts...),
		registry: registry,
		logger:   logger,
		config:   cfg,
	}
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.Bool("otlp_export", cfg.Enabled),
		zap.String("service_name", cfg.ServiceName),
	)
	return mp, nil
}

// Handler serves the Prometheus text exposition of every instrument
func (mp *MeterProvider) Handler() http.Handler {
	return promhttp.HandlerFor(mp.registry, promhttp.HandlerOpts{})
}

// Meter returns a named meter from the provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return mp.provider.Meter(name, opts...)
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Counter records monotonically increasing values.
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new Counter metric.
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Inc increments the counter by 1 with optional attributes.
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram records value distributions.
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a new Histogram metric with explicit bucket boundaries.
func NewHistogram(meter metric.Meter, name, description, unit string, boundaries []float64) (*Histogram, error) {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(description),
		metric.WithUnit(unit),
	}
	if len(boundaries) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(boundaries...))
	}

	h, err := meter.Float64Histogram(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	return &Histogram{histogram: h}, nil
}

// RecordDuration records a duration in seconds.
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// Metric attribute keys
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrOutcome        = attribute.Key("outcome")
	AttrStore          = attribute.Key("store")
	AttrResult         = attribute.Key("result")
)

// HTTPDurationBuckets are bucket boundaries for HTTP request duration (seconds).
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// ServiceMetrics holds the instruments shared by both services
type ServiceMetrics struct {
	requests        *Counter
	requestDuration *Histogram
	lookups         *Counter
	connectAttempts *Counter
}

// NewServiceMetrics creates the service instruments on meter
func NewServiceMetrics(meter metric.Meter) (*ServiceMetrics, error) {
	requests, err := NewCounter(meter, "http.server.requests", "Number of HTTP requests served", "{request}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "http.server.request.duration", "Duration of HTTP requests", "s", HTTPDurationBuckets)
	if err != nil {
		return nil, err
	}
	lookups, err := NewCounter(meter, "catalogue.lookups", "Catalogue product lookups by outcome", "{lookup}")
	if err != nil {
		return nil, err
	}
	connects, err := NewCounter(meter, "store.connect.attempts", "Backing store connection attempts", "{attempt}")
	if err != nil {
		return nil, err
	}

	return &ServiceMetrics{
		requests:        requests,
		requestDuration: duration,
		lookups:         lookups,
		connectAttempts: connects,
	}, nil
}

// RecordRequest records one served HTTP request
func (m *ServiceMetrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := []attribute.KeyValue{
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.Int(status),
	}
	m.requests.Inc(ctx, attrs...)
	m.requestDuration.RecordDuration(ctx, d, attrs...)
}

// RecordCatalogueLookup records the outcome of one product lookup
func (m *ServiceMetrics) RecordCatalogueLookup(outcome string) {
	m.lookups.Inc(context.Background(), AttrOutcome.String(outcome))
}

// ConnectObserver returns a callback counting the connection attempts of store
func (m *ServiceMetrics) ConnectObserver(store string) func(err error) {
	return func(err error) {
		result := "success"
		if err != nil {
			result = "failure"
		}
		m.connectAttempts.Inc(context.Background(), AttrStore.String(store), AttrResult.String(result))
	}
}
