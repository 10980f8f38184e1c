package httpapi

import (
	"context"
	"time"

	"companion.local/gee"
	"companion.local/internal/app/assetproxy"
	"companion.local/internal/platform/httpmiddleware"
	"companion.local/internal/platform/ratelimit"
)

// Retriever is the part of *assetproxy.Proxy the handlers need.
type Retriever interface {
	Retrieve(ctx context.Context, provider assetproxy.Provider, req assetproxy.AssetRequest) (*assetproxy.FetchResult, error)
}

type RouteOptions struct {
	// GooglePicker mounts /google-picker/*.
	GooglePicker bool
	// RateLimit is the per-IP requests per minute on proxy routes; 0 uses 120.
	RateLimit int
}

// RegisterRoutes mounts the asset proxy routes on the engine root. The
// upload-companion engine stays mounted behind them as the NoRoute handler.
func RegisterRoutes(engine *gee.Engine, p Retriever, limiter *ratelimit.Limiter, opts RouteOptions) {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 120
	}
	rl := httpmiddleware.RateLimit(limiter, "proxy", opts.RateLimit, time.Minute)

	if opts.GooglePicker {
		picker := engine.Group("/google-picker")
		picker.GET("/thumbnail", rl, NewThumbnailHandler(p))
		picker.GET("/get", rl, NewPickerGetHandler(p))
	}

	engine.GET("/unsplash/get/:fileId", rl, NewUnsplashGetHandler(p))
	engine.GET("/googlephotos/get/*fileId", NewGooglePhotosGetHandler())
}
