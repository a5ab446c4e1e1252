// Package app assembles the identity service: configuration, storage, cache,
// token verification, and the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rblessings/urlradar/internal/identity/cache"
	httpapi "github.com/rblessings/urlradar/internal/identity/http"
	"github.com/rblessings/urlradar/internal/identity/service"
	"github.com/rblessings/urlradar/internal/identity/store"
	mongostore "github.com/rblessings/urlradar/internal/identity/store/drivers/mongo"
	"github.com/rblessings/urlradar/pkg/jwtx"
	"github.com/rblessings/urlradar/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	redisCache *cache.Redis
	remoteKeys *jwtx.RemoteKeySet

	userService *service.UserService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	app.initCache(ctx)

	if err := app.initVerifierKeys(ctx); err != nil {
		_ = app.db.Close(ctx)
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.remoteKeys.Close()

	if app.redisCache != nil {
		if err := app.redisCache.Close(); err != nil {
			app.logger.Error("error closing cache", "error", err)
		}
	}

	if err := app.db.Close(ctx); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

// initDatabase connects to MongoDB and ensures the unique email index.
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := mongostore.Connect(ctx, app.cfg.MongoURI, app.cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	app.db = db
	app.logger.Info("database connected", "database", app.cfg.MongoDatabase)
	return nil
}

// initCache connects the Redis cache when configured. An unreachable cache
// only logs a warning: lookups degrade to the store, so startup proceeds.
func (app *Application) initCache(ctx context.Context) {
	if app.cfg.RedisHost == "" {
		app.logger.Info("cache disabled, no REDIS_HOST configured")
		return
	}

	c := cache.NewRedis(app.cfg.RedisHost, app.cfg.RedisPort)
	if err := c.Ping(ctx); err != nil {
		app.logger.Warn("cache unreachable at startup, lookups will fall back to the store",
			"host", app.cfg.RedisHost, "err", err)
	}
	app.redisCache = c
}

// initVerifierKeys fetches the authorization server's JWKS and starts the
// background refresher. Startup fails if the initial fetch fails: the
// service cannot admit any request without verification keys.
func (app *Application) initVerifierKeys(ctx context.Context) error {
	rks, err := jwtx.NewRemoteKeySet(ctx, jwtx.RemoteKeySetConfig{
		IssuerURI:       app.cfg.IssuerURI,
		JWKSURL:         app.cfg.JWKSURL,
		RefreshInterval: app.cfg.JWKSRefreshInterval,
		Logger:          app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize verification keys: %w", err)
	}
	app.remoteKeys = rks
	return nil
}

func (app *Application) initServices() {
	var c cache.Cache
	if app.redisCache != nil {
		c = app.redisCache
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Cache:  c,
		TTL:    app.cfg.CacheTTL,
		Logger: app.logger,
	}
}

func (app *Application) initHTTP() {
	var aud []string
	if app.cfg.Audience != "" {
		aud = []string{app.cfg.Audience}
	}
	verifier := jwtx.NewVerifierRS256(app.remoteKeys.Keys(), app.cfg.IssuerURI, aud)

	router := httpapi.NewRouter(
		app.remoteKeys.Keys(),
		verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.UserService = app.userService
	if app.redisCache != nil {
		router.CachePinger = app.redisCache
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
