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

	httpapi "github.com/aussiebroadwan/memberauth/internal/esstub/http"
	"github.com/aussiebroadwan/memberauth/internal/esstub/service"
	"github.com/aussiebroadwan/memberauth/internal/esstub/store"
	"github.com/aussiebroadwan/memberauth/pkg/housekeeping"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the ES stub: store, service, router and housekeeping.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db           *store.Store
	service      *service.Service
	housekeeping *housekeeping.Service

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "esstub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler, for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("es stub starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeeping.Stop()
		_ = app.db.Close()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down es stub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("es stub stopped")
	return nil
}

// initDatabase opens the store, applies migrations and seeds demo accounts
func (app *Application) initDatabase() error {
	dsn := app.cfg.DatabaseFile
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn)
	}

	db, err := store.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully")

	if app.cfg.Seed {
		n, err := db.SeedDemo(context.Background())
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to seed demo accounts: %w", err)
		}
		if n > 0 {
			app.logger.Info("demo accounts seeded", "accounts", n)
		}
	}
	return nil
}

func (app *Application) initServices() {
	if app.cfg.SigningSecret == "" {
		app.logger.Warn("ESSTUB_SIGNING_SECRET not set, session tokens use a per-process secret")
	}
	if app.cfg.LogCodes {
		app.logger.Warn("dispatched codes are logged in the clear")
	}

	app.service = service.New(app.db, service.Config{
		SigningSecret:    []byte(app.cfg.SigningSecret),
		PolicyID:         app.cfg.PolicyID,
		AppID:            app.cfg.AppID,
		SessionTTL:       app.cfg.SessionTTL,
		InteractionTTL:   app.cfg.InteractionTTL,
		CodeTTL:          app.cfg.CodeTTL,
		MaxLoginFailures: app.cfg.MaxLoginFailures,
		LockoutDuration:  app.cfg.LockoutDuration,
		MaxCodeAttempts:  app.cfg.MaxCodeAttempts,
	}, app.logger, service.WithOutbox(service.NewOutbox(app.logger, app.cfg.LogCodes)))

	app.housekeeping = housekeeping.New(app.logger, app.cfg.HousekeepingInterval, app.service.HousekeepingTasks()...)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.service, app.db, BuildVersion, app.logger)
	router.ExposeOutbox = app.cfg.ExposeOutbox
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
