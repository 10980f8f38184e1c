package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"companion.local/internal/platform/auth"
)

func newTestManager(t *testing.T, opts ManagerOptions) *Manager {
	t.Helper()
	store, err := NewMemoryStore(1000)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	t.Cleanup(store.Close)
	tokens, err := auth.NewHS256Service("secret", "companion", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}
	return NewManager(store, tokens, opts)
}

func TestManager_NewSessionWithoutCookie(t *testing.T) {
	m := newTestManager(t, ManagerOptions{})

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if !s.IsNew() {
		t.Fatal("session without cookie should be new")
	}
	if s.ID == "" {
		t.Fatal("new session has no id")
	}
}

func TestManager_UninitializedSessionIsNotSaved(t *testing.T) {
	m := newTestManager(t, ManagerOptions{})

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	w := httptest.NewRecorder()
	m.Commit(context.Background(), w, s)

	if got := w.Header().Get("Set-Cookie"); got != "" {
		t.Fatalf("Set-Cookie: got %q, want none", got)
	}
}

func TestManager_RoundTripThroughCookie(t *testing.T) {
	m := newTestManager(t, ManagerOptions{Secure: true})

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Set("googlephotos", "token-1")

	w := httptest.NewRecorder()
	m.Commit(context.Background(), w, s)

	resp := w.Result()
	cookies := resp.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies: got %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != DefaultCookieName {
		t.Fatalf("cookie name: got %q, want %q", c.Name, DefaultCookieName)
	}
	if !c.HttpOnly || !c.Secure {
		t.Fatalf("cookie flags: HttpOnly=%v Secure=%v, want both true", c.HttpOnly, c.Secure)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	again := m.Load(req)
	if again.IsNew() {
		t.Fatal("session should be loaded from store")
	}
	if again.ID != s.ID {
		t.Fatalf("id: got %q, want %q", again.ID, s.ID)
	}
	if v, _ := again.Get("googlephotos"); v != "token-1" {
		t.Fatalf("value: got %v, want %q", v, "token-1")
	}
}

func TestManager_ForgedCookieStartsFresh(t *testing.T) {
	m := newTestManager(t, ManagerOptions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "not-a-token"})

	s := m.Load(req)
	if !s.IsNew() {
		t.Fatal("forged cookie should yield a new session")
	}
}

func TestManager_UnmodifiedSessionSkipsSave(t *testing.T) {
	m := newTestManager(t, ManagerOptions{})

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Set("k", "v")
	m.Commit(context.Background(), httptest.NewRecorder(), s)

	w := httptest.NewRecorder()
	m.Commit(context.Background(), w, s)
	if got := w.Header().Get("Set-Cookie"); got != "" {
		t.Fatalf("second commit Set-Cookie: got %q, want none", got)
	}
}

func TestSessionContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context should have no session")
	}
	s := newSession("id", nil, true)
	got, ok := FromContext(WithSession(context.Background(), s))
	if !ok || got != s {
		t.Fatal("session not found in context")
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	store := NewRedisStore(rdb)
	id := "test-" + time.Now().Format("150405.000000000")
	defer store.Delete(context.Background(), id)

	if err := store.Save(ctx, id, map[string]any{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	values, found, err := store.Load(ctx, id)
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if values["a"] != "b" {
		t.Fatalf("value: got %v, want %q", values["a"], "b")
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := store.Load(ctx, id); found {
		t.Fatal("session still present after Delete")
	}
}
