package gee

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serve(e *Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNotFoundIsJSON(t *testing.T) {
	engine := New()
	engine.GET("/exists", func(ctx *Context) { ctx.String(200, "ok") })

	w := serve(engine, "GET", "/not-exists")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusNotFound)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Fatalf("body: got %s", w.Body.String())
	}
}

func TestCustomNoRoute(t *testing.T) {
	engine := New()
	engine.NoRoute(WrapH(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("fallback"))
	})))

	w := serve(engine, "GET", "/anything/else")

	if w.Code != http.StatusTeapot {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusTeapot)
	}
	if w.Body.String() != "fallback" {
		t.Fatalf("body: got %q", w.Body.String())
	}
}

func TestMethodNotAllowedWithAllowHeader(t *testing.T) {
	engine := New()
	engine.GET("/test", func(ctx *Context) { ctx.String(200, "ok") })
	engine.POST("/test", func(ctx *Context) { ctx.String(200, "ok") })

	w := serve(engine, "DELETE", "/test")

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if allow := w.Header().Get("Allow"); allow != "GET,POST" {
		t.Fatalf("Allow: got %q, want %q", allow, "GET,POST")
	}
}

func TestParamRoute(t *testing.T) {
	engine := New()
	var got string
	engine.GET("/unsplash/get/:fileId", func(ctx *Context) {
		got = ctx.Param("fileId")
		ctx.String(200, "ok")
	})

	w := serve(engine, "GET", "/unsplash/get/abc123")

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if got != "abc123" {
		t.Fatalf("fileId: got %q, want %q", got, "abc123")
	}
}

func TestWildcardRouteJoinsRemainder(t *testing.T) {
	engine := New()
	var got, pattern string
	engine.GET("/googlephotos/get/*fileId", func(ctx *Context) {
		got = ctx.Param("fileId")
		pattern = ctx.RoutePattern
		ctx.String(200, "ok")
	})

	serve(engine, "GET", "/googlephotos/get/albums/a1/photos/p2")

	if got != "albums/a1/photos/p2" {
		t.Fatalf("fileId: got %q, want %q", got, "albums/a1/photos/p2")
	}
	if pattern != "/googlephotos/get/*fileId" {
		t.Fatalf("RoutePattern: got %q", pattern)
	}
}

func TestStaticSegmentBeatsParam(t *testing.T) {
	engine := New()
	engine.GET("/google-picker/:what", func(ctx *Context) { ctx.String(200, "param") })
	engine.GET("/google-picker/thumbnail", func(ctx *Context) { ctx.String(200, "static") })

	w := serve(engine, "GET", "/google-picker/thumbnail")

	if w.Body.String() != "static" {
		t.Fatalf("body: got %q, want %q", w.Body.String(), "static")
	}
}

func TestGroupMiddlewareRunsForNotFound(t *testing.T) {
	executed := false

	engine := New()
	engine.Use(func(ctx *Context) {
		executed = true
		ctx.Next()
	})

	serve(engine, "GET", "/not-exists")

	if !executed {
		t.Fatal("middleware should run for 404")
	}
}

func TestOptionsRoute(t *testing.T) {
	engine := New()
	engine.OPTIONS("/x", func(ctx *Context) { ctx.AbortWithStatus(http.StatusNoContent) })

	w := serve(engine, http.MethodOptions, "/x")

	if w.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusNoContent)
	}
}
