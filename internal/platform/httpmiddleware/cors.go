package httpmiddleware

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"
)

// CORS builds the cross-origin policy for an explicit origin allow-list.
// Credentials are allowed, so origins are echoed back and never "*".
// Requests without an Origin header are not cross-origin and pass untouched.
func CORS(origins []string) *cors.Cors {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			if _, ok := allowed[origin]; ok {
				slog.Debug("cors origin allowed", "origin", origin)
				return true
			}
			slog.Warn("cors origin blocked", "origin", origin)
			return false
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{"Content-Disposition", "Content-Length", "Content-Type"},
		AllowCredentials:     true,
		OptionsSuccessStatus: http.StatusNoContent,
	})
}
