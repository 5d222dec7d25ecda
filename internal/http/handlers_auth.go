package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pankti/internal/auth"
	applog "pankti/internal/log"
	"pankti/internal/records"
)

type statusBody struct {
	Status string `json:"status"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusBody{Status: "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
			writeJSON(w, http.StatusServiceUnavailable, statusBody{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "ready"})
}

type sessionBody struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "authentication not configured"})
		return
	}
	var req records.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.deps.Auth.Login(r.Context(), req.PIN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.deps.Auth.SetCookie(w, session)
	writeJSON(w, http.StatusOK, sessionBody{ExpiresAt: session.ExpiresAt})
}

// handleLogout always clears the cookie; logging out without a session is not an error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth != nil {
		if err := s.deps.Auth.Logout(w, r); err != nil && !errors.Is(err, auth.ErrNoSession) {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
