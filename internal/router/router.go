package router

import (
	"net/http"

	"github.com/evyataryagoni/iptracker/internal/handler"
	"github.com/evyataryagoni/iptracker/internal/limiter"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/metrics"
	custommiddleware "github.com/evyataryagoni/iptracker/internal/middleware"
	v1 "github.com/evyataryagoni/iptracker/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Chi router with all middleware and routes
//
// Parameters:
//   - trackerHandler: the tracker session handler
//   - rateLimiter: admission control for routes that call the geolocation API
//   - m: metrics collector
//   - gatherer: source for GET /metrics (prometheus.DefaultGatherer in production)
//   - log: structured logger
func SetupRouter(trackerHandler *handler.TrackerHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters: RequestID and RealIP first so logging and rate limiting see them
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.MetricsMiddleware(m))

	r.Get("/", trackerHandler.Page)

	// Only lookups spend upstream quota, so only they are rate limited
	r.Mount("/v1", v1.SetupRoutes(trackerHandler, custommiddleware.RateLimitMiddleware(rateLimiter, m, log)))

	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// healthCheckHandler returns 200 OK while the server is running
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
