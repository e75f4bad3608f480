// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the read-and-download HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and .env).
//  3. Open the record store selected by STORE_DRIVER (mongo or postgres).
//  4. Connect to Redis when REDIS_URL is set.
//  5. Build the token verifier (HS256 secret or RS256 public key).
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

	"github.com/taibuivan/readanddownload/internal/api"
	"github.com/taibuivan/readanddownload/internal/auth"
	"github.com/taibuivan/readanddownload/internal/platform/config"
	"github.com/taibuivan/readanddownload/internal/platform/constants"
	"github.com/taibuivan/readanddownload/internal/platform/migration"
	mongostore "github.com/taibuivan/readanddownload/internal/platform/mongo"
	"github.com/taibuivan/readanddownload/internal/platform/notify"
	pgstore "github.com/taibuivan/readanddownload/internal/platform/postgres"
	redisstore "github.com/taibuivan/readanddownload/internal/platform/redis"
	"github.com/taibuivan/readanddownload/internal/platform/sec"
	"github.com/taibuivan/readanddownload/internal/record"
)

var kinds = []record.Kind{record.Downloads, record.OnlineReadings}

// recordStore is the opened persistence backend.
type recordStore struct {
	repositories map[string]record.Repository
	ping         func(ctx context.Context) error
	close        func()
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Record Store ───────────────────────────────────────────────────
	store, err := openStore(startupCtx, cfg, log)
	must(log, err, "open record store")
	defer store.close()

	checks := []api.Check{{Name: "database", Ping: store.ping}}

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var (
		revocationStore auth.RevocationStore
		security        api.Security
	)
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, redisstore.Options{
			URL:       cfg.RedisURL,
			Namespace: cfg.RedisNamespace,
		}, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		revocations := auth.NewRedisRevocationStore(rdb)
		revocationStore = revocations
		security.Revocations = revocations
		checks = append(checks, api.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}})
	} else {
		log.Warn("redis_not_configured", slog.String("effect", "logout disabled"))
	}

	// ── 5. Token Verification ─────────────────────────────────────────────
	tokenService, err := newTokenService(cfg)
	must(log, err, "initialize token service")
	security.Verifier = tokenService

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	notifier := notify.NewClient(notify.Options{
		CatalogueURL: cfg.CatalogueServiceURL,
		UsersURL:     cfg.UsersServiceURL,
		Timeout:      cfg.DownstreamTimeout,
		RPS:          cfg.DownstreamRPS,
	}, log)

	liveness, readiness := api.NewHealthHandlers(checks, log)
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(auth.NewService(revocationStore, log)),
	}

	for _, kind := range kinds {
		service := record.NewService(kind, store.repositories[kind.Name], notifier, record.Options{
			StoreTimeout: cfg.StoreTimeout,
			StrictISBN:   cfg.StrictISBNChecksum,
		}, log)
		handlers.Records = append(handlers.Records, record.NewHandler(service))
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, security, handlers)

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
	}

	log.Info("server stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// openStore connects the driver chosen by STORE_DRIVER and builds one
// repository per kind.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*recordStore, error) {
	store := &recordStore{repositories: map[string]record.Repository{}}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, cfg.StoreTimeout, log)
		if err != nil {
			return nil, err
		}
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			pool.Close()
			return nil, err
		}

		for _, kind := range kinds {
			store.repositories[kind.Name] = record.NewPostgresRepository(pool, kind)
		}
		store.ping = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }
		store.close = func() {
			log.Info("closing postgres pool")
			pool.Close()
		}

	default:
		client, err := mongostore.NewClient(ctx, cfg.MongoURI, constants.AppName, log)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDatabase)

		for _, kind := range kinds {
			repository := record.NewMongoRepository(database, kind)
			if err := repository.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, err
			}
			store.repositories[kind.Name] = repository
		}
		store.ping = func(ctx context.Context) error { return mongostore.Ping(ctx, client) }
		store.close = func() {
			log.Info("closing mongo client")
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("mongo disconnect error", slog.Any("error", err))
			}
		}
	}

	return store, nil
}

// newTokenService prefers the RS256 key pair when a public key is configured.
func newTokenService(cfg *config.Config) (*sec.TokenService, error) {
	if cfg.UsesRSA() {
		return sec.NewRSATokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, cfg.JWTIssuer)
	}
	return sec.NewHMACTokenService(cfg.JWTSecret, cfg.JWTIssuer)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
