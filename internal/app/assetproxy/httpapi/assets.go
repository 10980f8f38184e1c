package httpapi

import (
	"companion.local/gee"
	"companion.local/internal/app/assetproxy"
	"companion.local/internal/platform/metrics"
)

// NewThumbnailHandler serves GET /google-picker/thumbnail?googlePhotosUrl=&accessToken=.
func NewThumbnailHandler(p Retriever) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		req := assetproxy.AssetRequest{
			SourceURL:   ctx.Query("googlePhotosUrl"),
			AccessToken: ctx.Query("accessToken"),
			Variant:     assetproxy.VariantThumbnail,
		}
		if req.SourceURL == "" || req.AccessToken == "" {
			abortWithProxyError(ctx, assetproxy.ProviderGooglePhotos, assetproxy.ErrMissingCredentials)
			return
		}

		res, err := p.Retrieve(ctx.Req.Context(), assetproxy.ProviderGooglePhotos, req)
		if err != nil {
			abortWithProxyError(ctx, assetproxy.ProviderGooglePhotos, err)
			return
		}
		relay(ctx, res, dispositionInline, thumbnailCacheControl)
	}
}

// NewPickerGetHandler serves GET /google-picker/get. Without a usable url and
// token it answers with the placeholder pixel instead of an error, so picker
// UIs can probe the route.
func NewPickerGetHandler(p Retriever) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		req := assetproxy.AssetRequest{
			SourceURL:   ctx.Query("googlePhotosUrl"),
			AccessToken: ctx.Query("accessToken"),
			FileID:      firstNonEmpty(ctx.Query("fileId"), ctx.Query("googleFileId")),
			FileName:    ctx.Query("fileName"),
			Variant:     assetproxy.VariantFull,
		}
		if req.SourceURL == "" || req.AccessToken == "" {
			metrics.PlaceholderServedTotal.Inc()
			ph := assetproxy.Placeholder()
			relay(ctx, ph, contentDisposition(dispositionInline, ph.FileName), "")
			return
		}
		if req.FileName == "" && req.FileID != "" {
			req.FileName = req.FileID + ".jpg"
		}

		res, err := p.Retrieve(ctx.Req.Context(), assetproxy.ProviderGooglePhotos, req)
		if err != nil {
			abortWithProxyError(ctx, assetproxy.ProviderGooglePhotos, err)
			return
		}
		relay(ctx, res, contentDisposition(dispositionType(ctx), res.FileName), "")
	}
}

// NewUnsplashGetHandler serves GET /unsplash/get/:fileId.
func NewUnsplashGetHandler(p Retriever) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		req := assetproxy.AssetRequest{
			FileID:  ctx.Param("fileId"),
			Variant: assetproxy.VariantFull,
		}
		res, err := p.Retrieve(ctx.Req.Context(), assetproxy.ProviderUnsplash, req)
		if err != nil {
			abortWithProxyError(ctx, assetproxy.ProviderUnsplash, err)
			return
		}
		relay(ctx, res, contentDisposition(dispositionType(ctx), res.FileName), "")
	}
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
