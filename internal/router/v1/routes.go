package v1

import (
	"net/http"

	"github.com/evyataryagoni/iptracker/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures all v1 API routes.
// rateLimit wraps the routes that issue geolocation lookups.
func SetupRoutes(trackerHandler *handler.TrackerHandler, rateLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(rateLimit)
		r.Post("/lookup", trackerHandler.Lookup)
		r.Post("/locate", trackerHandler.Locate)
	})

	r.Get("/state", trackerHandler.State)
	r.Post("/viewport", trackerHandler.Viewport)
	r.Get("/history", trackerHandler.History)

	return r
}
