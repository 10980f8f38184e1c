package httpapi

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"companion.local/gee"
	"companion.local/internal/app/assetproxy"
)

const thumbnailCacheControl = "public, max-age=3600"

const (
	dispositionInline     = "inline"
	dispositionAttachment = "attachment"
)

// dispositionType is inline unless the caller asked for an explicit download.
func dispositionType(ctx *gee.Context) string {
	if ctx.Query("disposition") == dispositionAttachment {
		return dispositionAttachment
	}
	return dispositionInline
}

// contentDisposition renders kind with an optional quoted filename. Names
// outside printable ASCII also get an RFC 5987 filename* parameter.
func contentDisposition(kind, filename string) string {
	filename = strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, filename)
	if filename == "" {
		return kind
	}

	ascii := true
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r > 0x7e:
			ascii = false
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	out := kind + `; filename="` + b.String() + `"`
	if !ascii {
		out += "; filename*=UTF-8''" + url.PathEscape(filename)
	}
	return out
}

// relay writes a buffered asset with an exact Content-Length.
func relay(ctx *gee.Context, res *assetproxy.FetchResult, disposition, cacheControl string) {
	ctx.SetHeader("Content-Disposition", disposition)
	if cacheControl != "" {
		ctx.SetHeader("Cache-Control", cacheControl)
	}
	ctx.Data(http.StatusOK, res.ContentType, res.Body)
}

// abortWithProxyError maps a proxy failure to a JSON error. Only missing
// parameters are the caller's fault; every upstream failure is a 500 whose
// message carries the upstream status when there was one.
func abortWithProxyError(ctx *gee.Context, provider assetproxy.Provider, err error) {
	status := http.StatusInternalServerError
	kind := assetproxy.KindOf(err)
	if kind == assetproxy.KindBadRequest {
		status = http.StatusBadRequest
	}
	slog.Warn("asset request failed",
		"provider", provider.String(),
		"route", ctx.RoutePattern,
		"kind", kind.String(),
		"status", strconv.Itoa(status),
		"err", err)
	ctx.AbortWithError(status, err.Error())
}
