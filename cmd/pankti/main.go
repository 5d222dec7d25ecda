package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"pankti/internal/auth"
	"pankti/internal/backend"
	"pankti/internal/cache"
	"pankti/internal/cli"
	"pankti/internal/config"
	apphttp "pankti/internal/http"
	applog "pankti/internal/log"
	"pankti/internal/middleware/ratelimit"
	"pankti/internal/middleware/security"
	"pankti/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentApp, (*config.Config).Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	sessions, err := auth.NewManager(auth.Config{
		PIN:          cfg.AppPIN,
		PINHash:      cfg.AppPINHash,
		TTL:          cfg.SessionTTL,
		MaxSessions:  cfg.SessionCacheSize,
		SecureCookie: cfg.CookieSecure,
	}, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize authentication", "error", err)
		os.Exit(1)
	}

	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Error("Invalid trusted proxy", "error", err)
			os.Exit(1)
		}
	}

	caches := cache.NewManager(logger.Logger)
	caches.Register(sessions.Sessions())
	caches.StartCleanup(10 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:     res.Store,
		Snapshots: services.NewSnapshotService(res.Store),
		Ledger:    services.NewLedgerService(res.Store, res.Publisher),
		Auth:      sessions,
		Limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
		Detector: detector,
		Logger:   logger,
		Ping:     res.Ping,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting pankti server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"ledger_export", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully", "requests_served", srv.RequestsServed())
}
