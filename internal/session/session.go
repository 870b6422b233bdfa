// Package session keeps per-visitor byte values keyed by a cookie-borne
// session ID.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned by a Backend when the session has no value for
// the key.
var ErrNotFound = errors.New("session value not found")

// Backend stores session values. Implementations must be safe for
// concurrent use.
type Backend interface {
	Get(ctx context.Context, id, key string) ([]byte, error)
	Set(ctx context.Context, id, key string, value []byte, ttl time.Duration) error
}

// Config controls the session cookie.
type Config struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager issues session handles for HTTP requests.
type Manager struct {
	backend Backend
	cfg     Config
}

// NewManager creates a Manager storing values in backend.
func NewManager(backend Backend, cfg Config) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "storefront_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Manager{backend: backend, cfg: cfg}
}

// Open returns the handle for the request's session, issuing a new session
// cookie on w when the request carries none or an invalid one.
func (m *Manager) Open(w http.ResponseWriter, r *http.Request) *Handle {
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return m.handle(id.String())
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return m.handle(id)
}

func (m *Manager) handle(id string) *Handle {
	return &Handle{id: id, backend: m.backend, ttl: m.cfg.TTL}
}

// Handle is one visitor's session.
type Handle struct {
	id      string
	backend Backend
	ttl     time.Duration
}

// ID returns the session identifier.
func (h *Handle) ID() string {
	return h.id
}

// Get returns the value stored under key; ok is false when there is none.
func (h *Handle) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := h.backend.Get(ctx, h.id, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "get session %s", key)
	}
	return v, true, nil
}

// Set replaces the value stored under key and refreshes the session TTL.
func (h *Handle) Set(ctx context.Context, key string, value []byte) error {
	if err := h.backend.Set(ctx, h.id, key, value, h.ttl); err != nil {
		return errors.Wrapf(err, "set session %s", key)
	}
	return nil
}
