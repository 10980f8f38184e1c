package gee

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoveryReturnsFiveHundred(t *testing.T) {
	engine := New()
	engine.Use(Recovery())
	engine.GET("/panic", func(ctx *Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/panic", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if body := w.Body.String(); !strings.Contains(body, `"error":"Internal Server Error"`) {
		t.Fatalf("body: got %s", body)
	}
}

func TestRecoveryStopsHandlerChain(t *testing.T) {
	executed := make([]int, 0)

	engine := New()
	engine.Use(Recovery())
	engine.Use(func(ctx *Context) {
		executed = append(executed, 1)
		ctx.Next()
	})
	engine.GET("/panic", func(ctx *Context) {
		executed = append(executed, 2)
		panic("test panic")
	}, func(ctx *Context) {
		executed = append(executed, 3)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/panic", nil)
	engine.ServeHTTP(w, req)

	if len(executed) != 2 {
		t.Fatalf("executed: got %v, want [1 2]", executed)
	}
}

func TestRecoveryCatchesMiddlewarePanic(t *testing.T) {
	engine := New()
	engine.Use(Recovery())
	engine.Use(func(ctx *Context) {
		panic("panic in middleware")
	})
	engine.GET("/test", func(ctx *Context) {
		ctx.String(200, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestRecoveryWhenResponseAlreadyWritten(t *testing.T) {
	engine := New()
	engine.Use(Recovery())
	engine.GET("/panic", func(ctx *Context) {
		ctx.String(200, "partial")
		panic("test panic after write")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/panic", nil)
	engine.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("status: got %d, want 200 (already written)", w.Code)
	}
}
