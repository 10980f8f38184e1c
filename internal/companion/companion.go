package companion

import (
	"fmt"
	"net/http"
	"os"

	"companion.local/gee"
)

const welcome = "Welcome to Companion"

// Engine is the upload-companion HTTP surface mounted behind the proxy
// routes.
type Engine struct {
	opts   Options
	router *gee.Engine
}

// New validates opts and prepares the file path. Callers treat an error as
// fatal.
func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("companion options: %w", err)
	}
	if err := os.MkdirAll(opts.FilePath, 0o755); err != nil {
		return nil, fmt.Errorf("companion file path: %w", err)
	}

	r := gee.New()
	r.GET("/", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "%s", welcome)
	})
	r.NoRoute(func(ctx *gee.Context) {
		ctx.AbortWithError(http.StatusNotFound, "Not Found")
	})

	return &Engine{opts: opts, router: r}, nil
}

func (e *Engine) Options() Options { return e.opts }

func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.router.ServeHTTP(w, r)
}
