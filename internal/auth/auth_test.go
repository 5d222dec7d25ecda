package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoginWithPlainPIN(t *testing.T) {
	m, err := NewManager(Config{PIN: "1298", TTL: time.Hour}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Login(context.Background(), "0000"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("expected ErrInvalidPIN, got %v", err)
	}
	s, err := m.Login(context.Background(), " 1298 ")
	if err != nil || s.Token == "" {
		t.Fatalf("expected session, got %v %v", s, err)
	}
	if got, ok := m.Resolve(s.Token); !ok || got != s {
		t.Fatal("expected session to resolve")
	}
}

func TestLoginWithHash(t *testing.T) {
	hash, err := HashPIN("4321")
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewManager(Config{PIN: "1111", PINHash: hash}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Login(context.Background(), "1111"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatal("hash must take precedence over the plain pin")
	}
	if _, err := m.Login(context.Background(), "4321"); err != nil {
		t.Fatalf("expected hash login to succeed, got %v", err)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	if _, err := NewManager(Config{}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewManager(Config{PINHash: "not-a-hash"}, nil); err == nil {
		t.Fatal("expected invalid hash error")
	}
}

func TestSessionExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m, _ := NewManager(Config{PIN: "1298", TTL: time.Hour}, nil)
	m.WithClock(func() time.Time { return now })

	s, _ := m.Login(context.Background(), "1298")
	now = now.Add(59 * time.Minute)
	if _, ok := m.Resolve(s.Token); !ok {
		t.Fatal("session should still be valid")
	}
	now = now.Add(time.Minute)
	if _, ok := m.Resolve(s.Token); ok {
		t.Fatal("session should have expired")
	}
}

func TestMiddlewareRequireAndLogout(t *testing.T) {
	m, _ := NewManager(Config{PIN: "1298"}, nil)
	denied := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) }
	protected := m.Middleware(Require(denied)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			t.Error("expected session in context")
		}
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", rec.Code)
	}

	s, _ := m.Login(context.Background(), "1298")
	login := httptest.NewRecorder()
	m.SetCookie(login, s)
	cookie := login.Result().Cookies()[0]
	if cookie.Name != CookieName || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected access with cookie, got %d", rec.Code)
	}

	out := httptest.NewRecorder()
	if err := m.Logout(out, req); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c := out.Result().Cookies()[0]; c.MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", c)
	}
	if err := m.Logout(httptest.NewRecorder(), req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession on second logout, got %v", err)
	}

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}
