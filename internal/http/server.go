package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pankti/internal/auth"
	applog "pankti/internal/log"
	"pankti/internal/middleware/ratelimit"
	"pankti/internal/middleware/security"
	"pankti/internal/middleware/trace"
	"pankti/internal/ports"
	"pankti/internal/services"
)

// Deps are the collaborators the handlers work with. Limiter and Detector are
// optional; Ping may be nil when readiness needs no check.
type Deps struct {
	Store     ports.Store
	Snapshots *services.SnapshotService
	Ledger    *services.LedgerService
	Auth      *auth.Manager
	Limiter   *ratelimit.Limiter
	Detector  *security.Detector
	Logger    *applog.Logger
	Ping      func(context.Context) error
	Now       func() time.Time
}

type Server struct {
	http.Server
	deps  Deps
	trace *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if deps.Detector == nil {
		deps.Detector = security.NewDetector()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{deps: deps}
	s.trace = trace.NewMiddleware(deps.Detector.ExtractClientIP, applog.NewStructuredLogger(deps.Logger.WithComponent(applog.ComponentHTTP)))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)

	api.HandleFunc("GET /api/customers", s.handleListCustomers)
	api.HandleFunc("POST /api/customers", s.handleCreateCustomer)
	api.HandleFunc("GET /api/customers/{id}", s.handleGetCustomer)
	api.HandleFunc("PUT /api/customers/{id}", s.handleUpdateCustomer)
	api.HandleFunc("DELETE /api/customers/{id}", s.handleDeleteCustomer)
	api.HandleFunc("GET /api/customers/{id}/payments", s.handleListPayments)
	api.HandleFunc("POST /api/customers/{id}/payments", s.handleCreatePayment)
	api.HandleFunc("PUT /api/payments/{id}", s.handleUpdatePayment)
	api.HandleFunc("DELETE /api/payments/{id}", s.handleDeletePayment)

	api.HandleFunc("GET /api/employees", s.handleListEmployees)
	api.HandleFunc("POST /api/employees", s.handleCreateEmployee)

	api.HandleFunc("GET /api/attendance", s.handleAttendance)
	api.HandleFunc("POST /api/attendance", s.handleSaveAttendance)
	api.HandleFunc("DELETE /api/attendance/{id}", s.handleDeleteAttendance)

	api.HandleFunc("GET /api/advances", s.handleListAdvances)
	api.HandleFunc("POST /api/advances", s.handleCreateAdvance)

	mux.Handle("/api/", auth.Require(handleUnauthorized)(api))

	mws := []func(http.Handler) http.Handler{
		s.trace.Middleware,
		applog.Middleware(deps.Logger.WithComponent(applog.ComponentHTTP)),
		applog.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) }),
		deps.Detector.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
	}
	if deps.Limiter != nil {
		mws = append(mws, deps.Limiter.Middleware(deps.Detector.ExtractClientIP, ratelimit.MutationsOnly, handleRateLimited))
	}
	if deps.Auth != nil {
		mws = append(mws, deps.Auth.Middleware)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           chain(mux, mws...),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// chain applies mws so that the first one sees the request first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.deps.Limiter != nil {
			s.deps.Limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// RequestsServed reports how many requests went through the server.
func (s *Server) RequestsServed() int64 {
	return s.trace.Total()
}
