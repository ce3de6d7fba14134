package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/iptracker/internal/config"
	"github.com/evyataryagoni/iptracker/internal/handler"
	"github.com/evyataryagoni/iptracker/internal/limiter"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/mapview"
	"github.com/evyataryagoni/iptracker/internal/metrics"
	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/evyataryagoni/iptracker/internal/router"
	"github.com/evyataryagoni/iptracker/internal/store"
	"github.com/evyataryagoni/iptracker/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig := config.Load()

	// Initialize components
	appLogger := setupLogger(appConfig)
	if err := appConfig.Validate(); err != nil {
		appLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	registry, metricsCollector := setupMetrics(appLogger)

	history := setupHistory(appConfig, metricsCollector, appLogger)
	defer history.Close()

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	// Build the tracker session and the views bound to it
	center := models.MapCenter{Lat: appConfig.DefaultLat, Lng: appConfig.DefaultLng}
	ctrl := tracker.New(tracker.Options{
		APIKey:        appConfig.APIKey,
		LookupURL:     appConfig.GeoAPIURL,
		SelfURL:       appConfig.SelfAPIURL,
		Timeout:       appConfig.LookupTimeout,
		DefaultCenter: &center,
		Breakpoint:    appConfig.Breakpoint,
		DiscardStale:  appConfig.DiscardStale,
		History:       history,
		Metrics:       metricsCollector,
		Logger:        appLogger,
	})

	view := mapview.NewView(appConfig.MapZoom)
	unbind := mapview.NewSynchronizer(view).Bind(ctrl)
	defer unbind()

	viewport := tracker.NewViewport(0)
	unmount := ctrl.Mount(viewport)
	defer unmount()

	trackerHandler, err := handler.NewTrackerHandler(handler.Config{
		Tracker:      ctrl,
		View:         view,
		Viewport:     viewport,
		History:      history,
		HistoryLimit: appConfig.HistoryLimit,
		Breakpoint:   appConfig.Breakpoint,
		Logger:       appLogger,
	})
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to initialize handler")
	}
	appRouter := router.SetupRouter(trackerHandler, rateLimiter, metricsCollector, registry, appLogger)

	// Resolve our own address once so the map starts somewhere meaningful
	ctrl.AutoLocateAsync(ctx)

	if err := runServer(ctx, appConfig, appRouter, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("Server failed")
	}
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     true,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting IP Address Tracker...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("geo_api_url", appConfig.GeoAPIURL).
		Bool("api_key_set", appConfig.APIKey != "").
		Dur("lookup_timeout", appConfig.LookupTimeout).
		Bool("discard_stale", appConfig.DiscardStale).
		Str("history_type", appConfig.HistoryType).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

// setupMetrics creates a registry with runtime collectors and the application metrics
func setupMetrics(log *logger.Logger) (*prometheus.Registry, *metrics.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metricsCollector := metrics.New(registry)
	log.Info().Msg("Metrics initialized")
	return registry, metricsCollector
}

// setupHistory initializes the lookup history backend
// Supports memory, CSV, Redis and MySQL backends
func setupHistory(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) store.Store {
	history, err := store.New(store.Config{
		Type:          appConfig.HistoryType,
		Capacity:      appConfig.HistoryLimit,
		CSVPath:       appConfig.HistoryPath,
		MySQLDSN:      appConfig.MySQLDSN,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.HistoryType).Msg("Failed to initialize history store")
	}

	log.Info().Str("type", appConfig.HistoryType).Msg("History store initialized")
	return store.WithMetrics(history, appConfig.HistoryType, m)
}

// setupRateLimiter initializes the limiter guarding the geolocation API quota
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	window := time.Duration(appConfig.RateLimitWindow) * time.Second

	rateLimiter, err := limiter.New(limiter.Config{
		Type:          appConfig.RateLimitType,
		Limit:         appConfig.RateLimit,
		Window:        window,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Str("limit", fmt.Sprintf("%d lookups per %s", appConfig.RateLimit, window)).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// runServer serves until ctx is cancelled, then shuts down gracefully
func runServer(ctx context.Context, appConfig *config.Config, appRouter http.Handler, log *logger.Logger) error {
	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Info().
		Str("port", appConfig.Port).
		Str("page", "http://localhost:"+appConfig.Port+"/").
		Str("health_check", "http://localhost:"+appConfig.Port+"/health").
		Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
		Msg("Server is running")

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("run server: %w", err)
	}
}
