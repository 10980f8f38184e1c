package session

import (
	"context"
	"sync"
)

// Session is the per-browser state carried between requests. Values must be
// JSON encodable; both stores persist them that way.
type Session struct {
	ID string

	mu     sync.Mutex
	values map[string]any
	isNew  bool
	dirty  bool
}

func newSession(id string, values map[string]any, isNew bool) *Session {
	if values == nil {
		values = make(map[string]any)
	}
	return &Session{ID: id, values: values, isNew: isNew}
}

func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *Session) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	s.dirty = true
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// IsNew reports whether the session was created for this request rather
// than loaded from the store.
func (s *Session) IsNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isNew
}

// snapshot returns a copy of the values and whether they need saving.
func (s *Session) snapshot() (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, s.dirty
}

func (s *Session) markSaved() {
	s.mu.Lock()
	s.dirty = false
	s.isNew = false
	s.mu.Unlock()
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
