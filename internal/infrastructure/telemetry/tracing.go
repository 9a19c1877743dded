package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer and meter of application instrumentation
const TracerName = "github.com/shopcart/backend"

// Attribute keys of cart and catalogue spans
const (
	AttrCartID    = attribute.Key("cart.id")
	AttrItemCount = attribute.Key("cart.items")
	AttrFound     = attribute.Key("cart.found")
	AttrSKU       = attribute.Key("product.sku")
)

// StartSpan starts an internal span on the global tracer provider.
// Finish it with EndSpan.
//
//	ctx, span := telemetry.StartSpan(ctx, "cart.get", telemetry.AttrCartID.String(id))
//	defer func() { telemetry.EndSpan(span, err) }()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err, if any, as the span status and ends the span
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID returns the trace id of the span in ctx, or "" if there is none
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
