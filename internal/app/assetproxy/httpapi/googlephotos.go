package httpapi

import (
	"log/slog"
	"net/http"

	"companion.local/gee"
	"companion.local/internal/platform/session"
)

// sessionProviderKey is where the companion engine keeps Google Photos grant
// state inside a session.
const sessionProviderKey = "googlephotos"

type notImplementedResponse struct {
	Error                  string `json:"error"`
	FileID                 string `json:"fileId"`
	Message                string `json:"message"`
	SessionExists          bool   `json:"sessionExists"`
	HasGooglePhotosSession bool   `json:"hasGooglePhotosSession"`
}

// NewGooglePhotosGetHandler answers GET /googlephotos/get/*fileId with a fixed
// 501 describing what the request carried. Downloads for this provider are
// not implemented yet.
func NewGooglePhotosGetHandler() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		fileID := ctx.Param("fileId")
		s, ok := session.FromContext(ctx.Req.Context())
		hasProvider := ok && s.Has(sessionProviderKey)

		slog.Info("googlephotos download requested",
			"file_id", fileID,
			"session", ok,
			"provider_session", hasProvider)

		ctx.JSON(http.StatusNotImplemented, notImplementedResponse{
			Error:                  "Google Photos download implementation in progress",
			FileID:                 fileID,
			Message:                "Working on implementing the actual download from Google Photos API",
			SessionExists:          ok,
			HasGooglePhotosSession: hasProvider,
		})
	}
}
