package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"

	"github.com/fran-as/millDischargeDashboard/internal/config"
	"github.com/fran-as/millDischargeDashboard/internal/errors"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
	customMiddleware "github.com/fran-as/millDischargeDashboard/internal/middleware"
	"github.com/fran-as/millDischargeDashboard/internal/selector"
	"github.com/fran-as/millDischargeDashboard/internal/services"
	handlers "github.com/fran-as/millDischargeDashboard/internal/transport/http"
	ws "github.com/fran-as/millDischargeDashboard/internal/websocket"
	"github.com/fran-as/millDischargeDashboard/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Router *chi.Mux
	Server *http.Server
	Logger *slog.Logger

	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics

	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	WebSocketHub     *ws.Hub
	WebSocketHandler *ws.Handler

	errorHandler *errors.ErrorHandler
	validator    *customMiddleware.Validator
}

// NewApplication wires the dashboard from cfg.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	paths, err := cfg.Resolve()
	if err != nil {
		return nil, errors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, errors.NewStorageError("failed to ensure directories", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the table cache and everything that reads it
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateDashboardMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create dashboard metrics: %w", err)
	}
	a.Metrics = metrics

	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}

	a.errorHandler = errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	a.validator = customMiddleware.NewValidator()

	cache := selector.NewCache(a.Logger)
	a.DashboardService = services.NewDashboardService(cache, a.Paths.OutputFile, metrics, a.Logger)

	a.WebSocketHub = ws.NewHub(a.Logger, metrics, wsMetrics)
	a.WebSocketHandler = ws.NewHandler(a.WebSocketHub, a.DashboardService, a.validator, metrics,
		a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.errorHandler, a.Logger)

	a.HealthService = services.NewHealthService(contracts.Version, a.Paths.DataDir,
		a.DashboardService, a.WebSocketHandler, a.Logger)

	a.Logger.Info("Services initialized",
		slog.String("table", a.Paths.OutputFile),
		slog.Int("groups", len(a.DashboardService.Groups())))
	return nil
}

// setupRouter configures the HTTP router. Ordering: RequestID, RealIP,
// OTel, Logger, Recoverer; timeouts only wrap /api so /ws stays open.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errors.RecoveryMiddleware(a.errorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	if rl := a.Config.Security.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Get("/", handlers.ServeIndex(a.DashboardService.Groups))
	r.Method(http.MethodGet, "/ws", a.WebSocketHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Route("/api", a.setupAPIRoutes)

	a.Router = r
}

// setupAPIRoutes mounts the JSON API
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.errorHandler, a.Logger))
	r.Use(customMiddleware.JSONContent)
	if a.Config.Server.Compression {
		r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })
	}

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Mount("/health", healthHandler.Routes())
	r.Get("/version", healthHandler.Version)

	dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.validator, a.Logger, a.errorHandler)
	r.Mount("/", dashboardHandler.Routes())
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub and the HTTP server. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	hubMetrics := a.WebSocketHub.GetHubMetrics()
	a.WebSocketHub.Stop()
	a.Logger.InfoContext(ctx, "WebSocket hub stopped", slog.Any("hub", hubMetrics))

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck warms the table cache. A missing table is not
// fatal: the extractor may not have run yet and later loads retry.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	status := a.HealthService.ReadinessCheck(ctx)
	if status.Status != "ready" {
		var warnings []string
		for name, service := range status.Services {
			if sh, ok := service.(services.ServiceHealth); ok && sh.Status != "ready" {
				warnings = append(warnings, fmt.Sprintf("%s: %s", name, sh.Message))
			}
		}
		sort.Strings(warnings)
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed",
		slog.String("table", a.Paths.OutputFile))
	return nil
}
