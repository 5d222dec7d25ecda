// Package auth gates the API behind the shared workshop PIN. Sessions are
// opaque tokens held in a TTL cache and carried in a cookie.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pankti/internal/cache"
)

// CookieName is the cookie that persists the session token between requests.
const CookieName = "pankti_session"

var (
	ErrInvalidPIN    = errors.New("invalid pin")
	ErrNoSession     = errors.New("no active session")
	ErrNotConfigured = errors.New("no pin configured")
)

type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Config struct {
	PIN          string
	PINHash      string
	TTL          time.Duration
	MaxSessions  int
	SecureCookie bool
}

type Manager struct {
	pin      []byte
	pinHash  []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
	sessions *cache.LRUCache[*Session]
	logger   *slog.Logger
}

func NewManager(cfg Config, logger *slog.Logger) (*Manager, error) {
	if cfg.PIN == "" && cfg.PINHash == "" {
		return nil, ErrNotConfigured
	}
	if cfg.PINHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.PINHash)); err != nil {
			return nil, fmt.Errorf("invalid pin hash: %w", err)
		}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pin:      []byte(cfg.PIN),
		pinHash:  []byte(cfg.PINHash),
		ttl:      cfg.TTL,
		secure:   cfg.SecureCookie,
		now:      time.Now,
		sessions: cache.NewLRUCache[*Session](cfg.MaxSessions, cfg.TTL),
		logger:   logger.With("component", "auth"),
	}, nil
}

// WithClock replaces the time source of the manager and its session store.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	m.sessions.WithClock(now)
	return m
}

// Sessions exposes the store so a cache.Manager can sweep expired entries.
func (m *Manager) Sessions() cache.Cleaner {
	return m.sessions
}

// HashPIN returns a bcrypt hash suitable for APP_PIN_HASH.
func HashPIN(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(h), nil
}

func (m *Manager) checkPIN(pin string) bool {
	if len(m.pinHash) > 0 {
		return bcrypt.CompareHashAndPassword(m.pinHash, []byte(pin)) == nil
	}
	return subtle.ConstantTimeCompare(m.pin, []byte(pin)) == 1
}

// Login checks pin and opens a new session.
func (m *Manager) Login(ctx context.Context, pin string) (*Session, error) {
	if !m.checkPIN(strings.TrimSpace(pin)) {
		m.logger.WarnContext(ctx, "Rejected login attempt")
		return nil, ErrInvalidPIN
	}
	now := m.now()
	s := &Session{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.sessions.Set(s.Token, s)
	m.logger.InfoContext(ctx, "Session opened", "expires_at", s.ExpiresAt)
	return s, nil
}

// Resolve returns the live session for token.
func (m *Manager) Resolve(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	return m.sessions.Get(token)
}

func (m *Manager) Revoke(token string) {
	m.sessions.Delete(token)
}

func (m *Manager) SetCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

type contextKey struct{}

// FromContext returns the session attached by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

func tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware restores the session from the request cookie into the context.
// Requests without a valid session pass through unauthenticated.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := m.Resolve(tokenFrom(r)); ok {
			r = r.WithContext(context.WithValue(r.Context(), contextKey{}, s))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects requests that carry no session with onDenied.
func Require(onDenied http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				onDenied(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logout revokes the request's session and clears the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	m.clearCookie(w)
	token := tokenFrom(r)
	if _, ok := m.Resolve(token); !ok {
		return ErrNoSession
	}
	m.Revoke(token)
	m.logger.InfoContext(r.Context(), "Session closed")
	return nil
}
