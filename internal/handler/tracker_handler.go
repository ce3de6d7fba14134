package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/mapview"
	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/evyataryagoni/iptracker/internal/store"
	"github.com/evyataryagoni/iptracker/internal/tracker"
)

// maxHistoryLimit caps the limit query parameter of GET /v1/history
const maxHistoryLimit = 100

// StateResponse is the JSON form of a tracker session as the page renders it
type StateResponse struct {
	models.State
	Panel []tracker.Field `json:"panel"`
	Map   models.MapView  `json:"map"`
}

// LookupRequest is the body of POST /v1/lookup
type LookupRequest struct {
	Query string `json:"query"`
}

// Config wires a TrackerHandler to the session it serves
type Config struct {
	Tracker      *tracker.Controller
	View         *mapview.View
	Viewport     *tracker.Viewport
	History      store.Store // optional
	HistoryLimit int         // default limit for GET /v1/history
	Breakpoint   int
	Logger       *logger.Logger
}

// TrackerHandler handles HTTP requests for one tracker session.
// It deals with HTTP concerns only; state transitions live in the controller.
type TrackerHandler struct {
	tracker      *tracker.Controller
	view         *mapview.View
	viewport     *tracker.Viewport
	history      store.Store
	historyLimit int
	log          *logger.Logger
	page         *page
}

// NewTrackerHandler creates a handler and parses the page template
func NewTrackerHandler(cfg Config) (*TrackerHandler, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault()
	}

	breakpoint := cfg.Breakpoint
	if breakpoint <= 0 {
		breakpoint = tracker.DefaultBreakpoint
	}

	pg, err := newPage(breakpoint)
	if err != nil {
		return nil, err
	}

	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = store.DefaultCapacity
	}

	return &TrackerHandler{
		tracker:      cfg.Tracker,
		view:         cfg.View,
		viewport:     cfg.Viewport,
		history:      cfg.History,
		historyLimit: historyLimit,
		log:          log.WithComponent("Handler"),
		page:         pg,
	}, nil
}

// Page handles GET /
func (h *TrackerHandler) Page(w http.ResponseWriter, r *http.Request) {
	if err := h.page.render(w, h.snapshot()); err != nil {
		h.log.Error().Err(err).Msg("Failed to render page")
	}
}

// Lookup handles POST /v1/lookup
//
// The lookup runs in the background; the response carries the state with
// loading set. Clients poll GET /v1/state for the outcome.
func (h *TrackerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The lookup outlives the request
	if _, err := h.tracker.SubmitAsync(context.WithoutCancel(r.Context()), query); err != nil {
		if errors.Is(err, tracker.ErrEmptyQuery) {
			h.respondError(w, http.StatusBadRequest, tracker.InvalidInputNotice)
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusAccepted, h.snapshot())
}

// Locate handles POST /v1/locate by resolving the server's own public IP
func (h *TrackerHandler) Locate(w http.ResponseWriter, r *http.Request) {
	h.tracker.AutoLocateAsync(context.WithoutCancel(r.Context()))
	h.respondJSON(w, http.StatusAccepted, h.snapshot())
}

// State handles GET /v1/state
func (h *TrackerHandler) State(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.snapshot())
}

// Viewport handles POST /v1/viewport?width=N, fired by the page on resize
func (h *TrackerHandler) Viewport(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.Atoi(r.URL.Query().Get("width"))
	if err != nil || width <= 0 {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid 'width' query parameter")
		return
	}

	h.viewport.SetWidth(width)
	h.respondJSON(w, http.StatusOK, h.snapshot())
}

// History handles GET /v1/history?limit=N
func (h *TrackerHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondError(w, http.StatusBadRequest, "Invalid 'limit' query parameter")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	if h.history == nil {
		h.respondJSON(w, http.StatusOK, []models.HistoryEntry{})
		return
	}

	entries, err := h.history.Recent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read lookup history")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	h.respondJSON(w, http.StatusOK, entries)
}

func (h *TrackerHandler) snapshot() StateResponse {
	state := h.tracker.State()
	return StateResponse{
		State: state,
		Panel: tracker.Panel(state.Result),
		Map:   h.view.Snapshot(state.Result),
	}
}

// parseQuery reads the query from a JSON body or a form field
func parseQuery(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req LookupRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
			return "", err
		}
		return req.Query, nil
	}
	return r.FormValue("query"), nil
}

// respondJSON writes a JSON response with the given status code
func (h *TrackerHandler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes an error response with consistent formatting
func (h *TrackerHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
