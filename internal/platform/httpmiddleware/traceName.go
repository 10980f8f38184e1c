package httpmiddleware

import (
	"companion.local/gee"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceName renames the inbound server span after the matched route so
// spans group by pattern instead of by raw path.
func TraceName() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		span := trace.SpanFromContext(ctx.Req.Context())
		if ctx.RoutePattern != "" {
			span.SetName(ctx.Method + " " + ctx.RoutePattern)
			span.SetAttributes(attribute.String("http.route", ctx.RoutePattern))
		}
		ctx.Next()
	}
}
