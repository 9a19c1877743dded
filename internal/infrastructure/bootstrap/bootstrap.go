// Package bootstrap holds the process wiring shared by the service binaries:
// configuration, logging, telemetry, the gin engine and graceful shutdown.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/shopcart/backend/internal/infrastructure/logger"
	"github.com/shopcart/backend/internal/infrastructure/telemetry"
	"github.com/shopcart/backend/internal/interfaces/http/middleware"
)

// ShutdownTimeout bounds the graceful shutdown sequence
const ShutdownTimeout = 30 * time.Second

// CleanupFunc releases a resource during shutdown
type CleanupFunc func(ctx context.Context) error

// Runtime is the initialized process environment of one service
type Runtime struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *telemetry.ServiceMetrics

	tracer *telemetry.TracerProvider
	meter  *telemetry.MeterProvider
	logs   *telemetry.LoggerProvider

	cleanups []CleanupFunc
}

// Init loads configuration and sets up logging and telemetry for service
func Init(ctx context.Context, service config.Service) (*Runtime, error) {
	cfg, err := config.Load(service)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	base, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	rt := &Runtime{Config: cfg, Logger: base}

	if rt.tracer, err = telemetry.NewTracerProvider(ctx, telemetryCfg, base); err != nil {
		return nil, err
	}
	if rt.meter, err = telemetry.NewMeterProvider(ctx, telemetryCfg, base); err != nil {
		return nil, err
	}
	if rt.logs, err = telemetry.NewLoggerProvider(ctx, telemetryCfg, base); err != nil {
		return nil, err
	}
	rt.Logger = rt.logs.Bridge(base, base.Level())

	if rt.Metrics, err = telemetry.NewServiceMetrics(rt.meter.Meter(telemetry.TracerName)); err != nil {
		return nil, err
	}

	rt.Logger.Info("Starting service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)
	return rt, nil
}

// OnShutdown registers fn to run during shutdown. Cleanups run in reverse
// registration order.
func (r *Runtime) OnShutdown(fn CleanupFunc) {
	r.cleanups = append(r.cleanups, fn)
}

// MetricsHandler serves the Prometheus scrape endpoint
func (r *Runtime) MetricsHandler() http.Handler {
	return r.meter.Handler()
}

// Engine creates a gin engine with the common middleware chain
func (r *Runtime) Engine() *gin.Engine {
	if r.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.OpenAccess())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: r.Config.Telemetry.ServiceName,
		Enabled:     r.tracer.IsEnabled(),
	})...)
	engine.Use(logger.GinMiddleware(r.Logger))
	engine.Use(logger.Recovery(r.Logger))
	engine.Use(middleware.HTTPMetrics(r.Metrics))
	return engine
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts everything down
func (r *Runtime) Serve(handler http.Handler) error {
	srv := &http.Server{
		Addr:           ":" + r.Config.App.Port,
		Handler:        handler,
		ReadTimeout:    r.Config.HTTP.ReadTimeout,
		WriteTimeout:   r.Config.HTTP.WriteTimeout,
		IdleTimeout:    r.Config.HTTP.IdleTimeout,
		MaxHeaderBytes: r.Config.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		r.Logger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var err error
	select {
	case <-quit:
		r.Logger.Info("Shutting down server...")
	case err = <-serveErr:
		r.Logger.Error("Server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
		r.Logger.Error("Server forced to shutdown", zap.Error(shutdownErr))
	}
	r.Shutdown(ctx)
	return err
}

// Shutdown runs the registered cleanups, then flushes telemetry
func (r *Runtime) Shutdown(ctx context.Context) {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		if err := r.cleanups[i](ctx); err != nil {
			r.Logger.Error("Cleanup failed", zap.Error(err))
		}
	}
	r.cleanups = nil

	r.Logger.Info("Server exited gracefully")
	_ = logger.Sync(r.Logger)

	if err := r.logs.Shutdown(ctx); err != nil {
		r.Logger.Error("Error shutting down log provider", zap.Error(err))
	}
	if err := r.meter.Shutdown(ctx); err != nil {
		r.Logger.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := r.tracer.Shutdown(ctx); err != nil {
		r.Logger.Error("Error shutting down tracer provider", zap.Error(err))
	}
}
