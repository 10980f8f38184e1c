package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"companion.local/internal/platform/auth"
)

const DefaultCookieName = "companion.sid"

type ManagerOptions struct {
	CookieName string
	TTL        time.Duration
	// Secure marks the cookie Secure and SameSite=None so cross-origin
	// credentialed requests carry it.
	Secure bool
}

// Manager ties a Store to the signed session cookie. Sessions are created
// lazily: a new session reaches the store and the browser only after a
// handler writes a value into it.
type Manager struct {
	store  Store
	tokens auth.TokenService
	opts   ManagerOptions
}

func NewManager(store Store, tokens auth.TokenService, opts ManagerOptions) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, tokens: tokens, opts: opts}
}

// Load returns the session named by the request cookie, or a fresh one when
// the cookie is absent, forged, expired or unknown to the store.
func (m *Manager) Load(r *http.Request) *Session {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || c.Value == "" {
		return newSession(uuid.NewString(), nil, true)
	}
	id, err := m.tokens.Verify(c.Value)
	if err != nil {
		slog.Debug("session cookie rejected", "err", err)
		return newSession(uuid.NewString(), nil, true)
	}
	values, found, err := m.store.Load(r.Context(), id)
	if err != nil {
		slog.Warn("session load failed", "store", m.store.Name(), "err", err)
		return newSession(uuid.NewString(), nil, true)
	}
	if !found {
		return newSession(uuid.NewString(), nil, true)
	}
	return newSession(id, values, false)
}

// Commit persists a modified session and sets its cookie on w. It is a no-op
// for unmodified sessions and must run before the response header is sent.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, s *Session) {
	values, dirty := s.snapshot()
	if !dirty {
		return
	}
	if s.IsNew() && len(values) == 0 {
		return
	}
	if err := m.store.Save(ctx, s.ID, values, m.opts.TTL); err != nil {
		slog.Error("session save failed", "store", m.store.Name(), "err", err)
		return
	}
	token, err := m.tokens.Sign(s.ID)
	if err != nil {
		slog.Error("session cookie sign failed", "err", err)
		return
	}
	s.markSaved()

	cookie := &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if m.opts.Secure {
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)
}
