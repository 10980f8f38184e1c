package middleware

import (
	"log/slog"
	"time"

	"companion.local/gee"
)

// AccessLog writes one structured line per request. Only the path is logged:
// the picker routes carry access tokens in the query string.
func AccessLog() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.RoutePattern
		if route == "" {
			route = "UNMATCHED"
		}
		slog.Info("access",
			"request_id", ctx.Req.Header.Get(RequestIDHeader),
			"method", ctx.Method,
			"path", ctx.Path,
			"route", route,
			"origin", ctx.Req.Header.Get("Origin"),
			"status", ctx.Writer.Status(),
			"bytes", ctx.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds())
	}
}
