package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/evyataryagoni/iptracker/internal/limiter"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/metrics"
	"github.com/evyataryagoni/iptracker/internal/models"
)

// RateLimitedMessage is the error body of a 429 response
const RateLimitedMessage = "Rate limit exceeded. Please try again later."

// RateLimitMiddleware admits requests per client address and answers 429
// when the client is over its lookup quota.
// It expects chi's RealIP middleware to have run, so RemoteAddr already
// reflects X-Real-IP / X-Forwarded-For.
func RateLimitMiddleware(lim limiter.Limiter, m *metrics.Metrics, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r)

			if !lim.Allow(client) {
				if m != nil {
					m.HTTPRateLimited.Inc()
				}
				if log != nil {
					log.Warn().Str("client", client).Str("path", r.URL.Path).Msg("Rate limit exceeded")
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: RateLimitedMessage})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey strips the port from RemoteAddr so one client maps to one bucket
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
