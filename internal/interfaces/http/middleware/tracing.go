package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopcart/backend/internal/infrastructure/telemetry"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// untracedPaths are the health and metrics endpoints, which never get a server span
var untracedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Tracing returns the OpenTelemetry server span middleware followed by
// SpanEnricher, or nothing when tracing is disabled.
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
			return !untracedPaths[r.URL.Path]
		})),
		SpanEnricher(),
	}
}

// SpanEnricher tags the server span with the request id and the cart id or
// SKU of the route. It must run inside the otelgin middleware.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if id := c.Param("id"); id != "" {
				span.SetAttributes(telemetry.AttrCartID.String(id))
			}
			if sku := c.Param("sku"); sku != "" {
				span.SetAttributes(telemetry.AttrSKU.String(sku))
			}
		}
		c.Next()
	}
}
