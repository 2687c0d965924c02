// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the tablefinder HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Install the tracer provider (no-op without an endpoint).
//  4. Migrate and open the credential store (PostgreSQL or SQLite).
//  5. Connect to Redis (session cache).
//  6. Wire services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/tablefinder/internal/api"
	"github.com/taibuivan/tablefinder/internal/auth"
	"github.com/taibuivan/tablefinder/internal/platform/config"
	"github.com/taibuivan/tablefinder/internal/platform/constants"
	"github.com/taibuivan/tablefinder/internal/platform/middleware"
	"github.com/taibuivan/tablefinder/internal/platform/migration"
	pgstore "github.com/taibuivan/tablefinder/internal/platform/postgres"
	redisstore "github.com/taibuivan/tablefinder/internal/platform/redis"
	"github.com/taibuivan/tablefinder/internal/platform/sec"
	"github.com/taibuivan/tablefinder/internal/platform/sqlite"
	"github.com/taibuivan/tablefinder/internal/platform/telemetry"
	"github.com/taibuivan/tablefinder/internal/restaurant"
)

// stores bundles the repositories of the selected credential store driver.
type stores struct {
	users        auth.UserRepository
	transactions restaurant.TransactionRepository
	health       api.HealthCheck
	close        func()
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", "tablefinder"))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "tablefinder"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	// Root context for startup. A deadline catches misconfiguration quickly.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Tracing ────────────────────────────────────────────────────────
	shutdownTracing, err := telemetry.Setup(startupCtx, cfg.OTelEndpoint, constants.AppName, constants.AppVersion)
	must(log, err, "initialize tracing")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if terr := shutdownTracing(ctx); terr != nil {
			log.Error("tracer shutdown error", slog.Any("error", terr))
		}
	}()

	// ── 4. Credential Store ───────────────────────────────────────────────
	store, err := openStores(startupCtx, cfg, log)
	must(log, err, "open credential store")
	defer store.close()

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.SecretKey, constants.AuthIssuer)
	must(log, err, "initialize token service")

	authService := auth.NewService(store.users, auth.NewSessionCache(rdb), tokenService, cfg.StoreTimeout)

	lookupClient := restaurant.NewClient(restaurant.ClientConfig{
		GeocoderURL:  cfg.GeocoderURL,
		OverpassURL:  cfg.OverpassURL,
		RadiusMeters: cfg.SearchRadiusMeters,
		Timeout:      cfg.HTTPClientTimeout,
	})
	searchService := restaurant.NewService(lookupClient, store.transactions, cfg.StoreTimeout)

	liveness, readiness := api.NewHealthHandlers([]api.HealthCheck{
		store.health,
		{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       auth.NewHandler(authService),
		Restaurant: restaurant.NewHandler(searchService, middleware.RequireSession(authService)),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// openStores migrates and connects the configured credential store driver.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		if err := migration.RunSQLite(cfg.SQLitePath, log); err != nil {
			return nil, err
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:        auth.NewSQLiteUserRepository(db),
			transactions: restaurant.NewSQLiteTransactionRepository(db),
			health:       api.HealthCheck{Name: "sqlite", Check: func(ctx context.Context) error { return sqlite.Ping(ctx, db) }},
			close: func() {
				log.Info("closing sqlite database")
				_ = db.Close()
			},
		}, nil

	default:
		if err := migration.RunPostgres(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, cfg.StoreTimeout, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:        auth.NewPostgresUserRepository(pool),
			transactions: restaurant.NewPostgresTransactionRepository(pool),
			health:       api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
			close: func() {
				log.Info("closing postgres pool")
				pool.Close()
			},
		}, nil
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
