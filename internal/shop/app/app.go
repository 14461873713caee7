package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/storefront/internal/shop/http"
	"github.com/aussiebroadwan/storefront/internal/shop/metrics"
	"github.com/aussiebroadwan/storefront/internal/shop/service"
	"github.com/aussiebroadwan/storefront/internal/shop/store"
	"github.com/aussiebroadwan/storefront/internal/shop/store/drivers/postgres"
	"github.com/aussiebroadwan/storefront/internal/shop/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/blobx"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/upload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the shop service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	blobs    blobx.Store
	tokens   *jwtx.TokenService
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	userService    *service.UserService
	catalogService *service.CatalogService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialised.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "shop",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SecretToken == "" {
		app.logger.Error("SECRET_TOKEN is not set, logins will fail until it is configured")
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initBlobs(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMetrics()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("shop service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown drains in-flight requests, then closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down shop service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("shop service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.Database.Driver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.Database.URL)
	default:
		dsn := app.cfg.Database.File
		if dsn != ":memory:" {
			dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn)
		}
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Database.Driver)
	return nil
}

// initBlobs builds the image store behind a circuit breaker.
func (app *Application) initBlobs(ctx context.Context) error {
	var (
		next blobx.Store
		err  error
	)
	switch app.cfg.Blob.Driver {
	case "s3":
		next, err = blobx.NewS3Store(ctx, blobx.S3Config{
			Bucket:        app.cfg.Blob.S3.Bucket,
			Region:        app.cfg.Blob.S3.Region,
			Endpoint:      app.cfg.Blob.S3.Endpoint,
			AccessKey:     app.cfg.Blob.S3.AccessKey,
			SecretKey:     app.cfg.Blob.S3.SecretKey,
			PublicBaseURL: app.cfg.Blob.PublicBaseURL,
		})
	default:
		next, err = blobx.NewLocalStore(app.cfg.Blob.LocalDir, app.cfg.Blob.PublicBaseURL)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}

	app.blobs = blobx.NewBreakerStore(next, blobx.BreakerConfig{Name: "blob-" + app.cfg.Blob.Driver}, app.logger)
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokens = jwtx.NewTokenService(app.cfg.SecretToken, jwtx.DefaultSessionTTL)

	app.userService = &service.UserService{
		Store:  app.db,
		Hasher: cryptox.NewPasswordHasher(app.cfg.BcryptCost),
		Tokens: app.tokens,
	}
	app.catalogService = &service.CatalogService{Store: app.db}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	opts := httpapi.Options{
		Version: BuildVersion,
		Cookie:  httpx.NewSessionCookie(app.cfg.Production(), app.tokens.TTL()),
		Upload: upload.Config{
			Timeout: app.cfg.Upload.Timeout,
		},
		CORSOrigins:  app.cfg.CORSOrigins,
		StaticDir:    app.cfg.StaticDir,
		StrictLimit:  app.cfg.RateLimit.Strict,
		LenientLimit: app.cfg.RateLimit.Lenient,
		Gatherer:     app.registry,
	}
	if app.cfg.Blob.Driver == "local" {
		opts.MediaDir = app.cfg.Blob.LocalDir
	}

	router := httpapi.NewRouter(opts, app.tokens, app.db, app.blobs, app.metrics, app.logger)
	router.UserService = app.userService
	router.CatalogService = app.catalogService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
