package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"retrocli/internal/config"
	apierrors "retrocli/internal/errors"
	"retrocli/internal/infrastructure"
	customMiddleware "retrocli/internal/middleware"
	"retrocli/internal/services"
	transport "retrocli/internal/transport/http"
)

// Application wires configuration, observability, services and the HTTP
// router together.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Router        chi.Router
	Server        *http.Server

	analysisService *services.AnalysisService
	errorHandler    *apierrors.ErrorHandler
}

// NewApplication builds a fully wired application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("service", infrastructure.ServiceName),
		slog.String("version", infrastructure.ServiceVersion),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
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

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.errorHandler = apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	opts := []services.Option{}
	if a.OTelProviders.Tracer != nil {
		opts = append(opts, services.WithTracer(a.OTelProviders.Tracer))
	}
	if a.OTelProviders.Meter != nil {
		metrics, err := infrastructure.CreateAggregationMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create aggregation metrics: %w", err)
		}
		opts = append(opts, services.WithMetrics(metrics))
	}

	a.analysisService = services.NewAnalysisService(a.Logger, opts...)
	return nil
}

// setupRouter assembles the middleware chain and mounts the handlers.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	healthHandler := transport.NewHealthHandler(a.Logger)
	r.Get("/healthz", healthHandler.LivenessCheck)
	r.Get("/readyz", healthHandler.ReadinessCheck)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", a.OTelProviders.PrometheusHTTP)
	}

	analysisHandler := transport.NewAnalysisHandler(a.analysisService, a.Config.Limits, a.Logger, a.errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/analysis", analysisHandler.Routes())
	})

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
}

// createServer builds the HTTP server around the router.
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

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		a.Logger.Info("shutting down",
			slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if serr := a.OTelProviders.Shutdown(cleanupCtx); serr != nil {
		a.Logger.Warn("otel shutdown failed", slog.String("error", serr.Error()))
	}
	if cerr := infrastructure.CloseLogFile(); cerr != nil {
		a.Logger.Warn("closing log file failed", slog.String("error", cerr.Error()))
	}

	return err
}
