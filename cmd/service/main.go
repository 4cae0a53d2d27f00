package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-edge-proxy/internal/client"
	"github.com/kjstillabower/weather-edge-proxy/internal/config"
	"github.com/kjstillabower/weather-edge-proxy/internal/geo"
	httphandler "github.com/kjstillabower/weather-edge-proxy/internal/http"
	"github.com/kjstillabower/weather-edge-proxy/internal/lifecycle"
	"github.com/kjstillabower/weather-edge-proxy/internal/observability"
	"github.com/kjstillabower/weather-edge-proxy/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal("server setup", zap.Error(err))
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", ":"+cfg.ServerPort),
			zap.String("version", cfg.Version),
			zap.String("on_missing_location", cfg.OnMissing),
			zap.Duration("upstream_timeout", cfg.WeatherAPITimeout),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	shutdown(srv, cfg, logger)

	logger.Info("shutdown complete")
	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
}

// newServer wires config into the request path: builder, client, pipeline, resolver,
// handler and router.
func newServer(cfg *config.Config, logger *zap.Logger) (*http.Server, error) {
	builder, err := client.NewBuilder(cfg.WeatherAPIURL, cfg.WeatherAPIKey)
	if err != nil {
		return nil, fmt.Errorf("weather request builder: %w", err)
	}
	weatherClient := client.NewOpenWeatherClient(cfg.WeatherAPITimeout, cfg.MaxResponseBytes)
	weatherService := service.NewWeatherService(builder, weatherClient)

	var regions geo.RegionFinder
	if cfg.RegionLookup {
		tz, err := geo.NewTimezoneRegions()
		if err != nil {
			return nil, fmt.Errorf("timezone region lookup: %w", err)
		}
		regions = tz
		logger.Info("region lookup enabled")
	}
	resolver := geo.NewResolver(geo.NewHeaderSource(cfg.LatitudeHeader, cfg.LongitudeHeader, cfg.RegionHeader), regions)

	handler := httphandler.NewHandler(resolver, weatherService, httphandler.Options{
		Version:               cfg.Version,
		RejectMissingLocation: cfg.OnMissing == config.OnMissingReject,
		DetailedErrors:        cfg.DetailedErrors,
		Health: &httphandler.HealthConfig{
			DegradedWindow:   cfg.DegradedWindow,
			DegradedErrorPct: cfg.DegradedErrorPct,
		},
	}, logger)

	return &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httphandler.NewRouter(handler, resolver, logger, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}, nil
}

// shutdown flips /health to shutting-down, closes the listener and waits for accepted
// requests to be answered, each step bounded by its configured timeout.
func shutdown(srv *http.Server, cfg *config.Config, logger *zap.Logger) {
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}
}
