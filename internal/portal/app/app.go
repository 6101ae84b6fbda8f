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

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/internal/portal/flowstore"
	httpapi "github.com/aussiebroadwan/memberauth/internal/portal/http"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/housekeeping"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the portal: ES client, flow store, router and housekeeping.
type Application struct {
	cfg    Config
	logger *slog.Logger

	es           *esapi.Client
	flows        *flowstore.Store
	housekeeping *housekeeping.Service

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if cfg.ESBaseURL == "" {
		return nil, errors.New("PORTAL_ES_BASE_URL is required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
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

	app.logger.Info("portal starting", "port", app.cfg.Port, "es", app.cfg.ESBaseURL, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeeping.Stop()
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
	app.logger.Info("shutting down portal...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	var shutdownErr error
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
		shutdownErr = err
	}

	app.housekeeping.Stop()

	app.logger.Info("portal stopped", "abandoned_flows", app.flows.Len())
	return shutdownErr
}

func (app *Application) initServices() {
	app.es = esapi.NewClientWithHTTP(app.cfg.ESBaseURL, &http.Client{Timeout: app.cfg.ESTimeout})

	flowCfg := login.Config{
		PolicyID:             app.cfg.PolicyID,
		AppID:                app.cfg.AppID,
		HighRiskURL:          app.cfg.HighRiskURL,
		IndeterminateRiskURL: app.cfg.IndeterminateRiskURL,
	}
	app.flows = flowstore.New(func() *login.Flow {
		return login.New(app.es, flowCfg)
	}, app.cfg.FlowTTL)

	app.housekeeping = housekeeping.New(app.logger, app.cfg.HousekeepingInterval, app.flows.HousekeepingTask())
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.flows, app.es, httpapi.CookieConfig{
		Secure:  app.cfg.CookieSecure,
		FlowTTL: app.cfg.FlowTTL,
	}, BuildVersion, app.logger)
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
