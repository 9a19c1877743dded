package telemetry_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/shopcart/backend/internal/infrastructure/telemetry"
)

func disabledConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "cart-test",
	}
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, disabledConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(ctx))
}

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestStartSpan_EndWithError(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := telemetry.StartSpan(context.Background(), "cart.get", telemetry.AttrCartID.String("42"))
	assert.NotEmpty(t, telemetry.TraceID(ctx))
	span.SetAttributes(telemetry.AttrItemCount.Int(2))
	telemetry.EndSpan(span, errors.New("catalogue down"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "cart.get", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Attributes(), 2)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestStartSpan_EndOK(t *testing.T) {
	recorder := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "catalogue.get_product", telemetry.AttrSKU.String("A"))
	telemetry.EndSpan(span, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.TraceID(context.Background()))
}

func TestMeterProvider_ServesServiceMetrics(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, disabledConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	metrics, err := telemetry.NewServiceMetrics(mp.Meter("test"))
	require.NoError(t, err)

	metrics.RecordRequest(ctx, http.MethodGet, "/cart/:id", http.StatusOK, 25*time.Millisecond)
	metrics.RecordCatalogueLookup("found")
	metrics.RecordCatalogueLookup("missing")
	observe := metrics.ConnectObserver("redis")
	observe(errors.New("refused"))
	observe(nil)

	rec := httptest.NewRecorder()
	mp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "http_server_requests")
	assert.Contains(t, body, "http_server_request_duration")
	assert.Contains(t, body, "catalogue_lookups")
	assert.Contains(t, body, `outcome="found"`)
	assert.Contains(t, body, `outcome="missing"`)
	assert.Contains(t, body, "store_connect_attempts")
	assert.Contains(t, body, `result="failure"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestLoggerProvider_DisabledBridgeIsIdentity(t *testing.T) {
	ctx := context.Background()
	base := zap.NewNop()

	lp, err := telemetry.NewLoggerProvider(ctx, disabledConfig(), base)
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}
