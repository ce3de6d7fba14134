package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/evyataryagoni/iptracker/internal/geolocation"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/mapview"
	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/evyataryagoni/iptracker/internal/store"
	"github.com/evyataryagoni/iptracker/internal/tracker"
)

// testEnv is one tracker session wired the way cmd/server wires it
type testEnv struct {
	handler  *TrackerHandler
	provider *geolocation.MockProvider
	history  *store.MockStore
	view     *mapview.View
	viewport *tracker.Viewport
	ctrl     *tracker.Controller
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	provider := geolocation.NewMockProvider()
	history := store.NewMockStore()
	ctrl := tracker.New(tracker.Options{
		Provider: provider,
		History:  history,
		Logger:   logger.NewNop(),
	})

	view := mapview.NewView(13)
	unbind := mapview.NewSynchronizer(view).Bind(ctrl)
	t.Cleanup(unbind)

	viewport := tracker.NewViewport(0)
	unmount := ctrl.Mount(viewport)
	t.Cleanup(unmount)

	handler, err := NewTrackerHandler(Config{
		Tracker:  ctrl,
		View:     view,
		Viewport: viewport,
		History:  history,
		Logger:   logger.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	return &testEnv{handler: handler, provider: provider, history: history, view: view, viewport: viewport, ctrl: ctrl}
}

// waitIdle waits for background lookups to finish
func (e *testEnv) waitIdle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.ctrl.State().Loading {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for lookup to finish")
		}
		time.Sleep(time.Millisecond)
	}
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) StateResponse {
	t.Helper()
	var resp StateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// TestTrackerHandler_Lookup_EmptyInput tests the invalid-input notice
func TestTrackerHandler_Lookup_EmptyInput(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"empty JSON query", `{"query":""}`, "application/json"},
		{"whitespace JSON query", `{"query":"   "}`, "application/json; charset=utf-8"},
		{"missing JSON field", `{}`, "application/json"},
		{"empty form field", "query=", "application/x-www-form-urlencoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t)
			req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			// Act
			env.handler.Lookup(rec, req)

			// Assert
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}

			var errResp models.ErrorResponse
			json.NewDecoder(rec.Body).Decode(&errResp)
			if errResp.Error != tracker.InvalidInputNotice {
				t.Errorf("expected %q, got %q", tracker.InvalidInputNotice, errResp.Error)
			}
			if calls := env.provider.Calls(); len(calls) != 0 {
				t.Errorf("expected no lookups, got %v", calls)
			}
		})
	}
}

// TestTrackerHandler_Lookup_InvalidBody tests malformed JSON
func TestTrackerHandler_Lookup_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.handler.Lookup(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

// TestTrackerHandler_Lookup_Accepted tests that the response is sent while the lookup is in flight
func TestTrackerHandler_Lookup_Accepted(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	gate := make(chan struct{})
	env.provider.Gate = map[string]chan struct{}{"paris.example": gate}

	req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(`{"query":"paris.example"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	// Act
	env.handler.Lookup(rec, req)

	// Assert
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	accepted := decodeState(t, rec)
	if !accepted.Loading {
		t.Error("expected loading in the accepted response")
	}
	if accepted.Query != "paris.example" {
		t.Errorf("expected query paris.example, got %q", accepted.Query)
	}
	if accepted.Panel != nil {
		t.Errorf("expected hidden panel before the first result, got %+v", accepted.Panel)
	}

	close(gate)
	env.waitIdle(t)

	stateRec := httptest.NewRecorder()
	env.handler.State(stateRec, httptest.NewRequest(http.MethodGet, "/v1/state", nil))
	final := decodeState(t, stateRec)

	expected := models.MapCenter{Lat: 48.8566, Lng: 2.3522}
	if final.Center != expected || final.Map.Center != expected {
		t.Errorf("expected center and map view at %v, got %v / %v", expected, final.Center, final.Map.Center)
	}
	if final.Map.Revision != accepted.Map.Revision+1 {
		t.Errorf("expected exactly one re-center, revision %d -> %d", accepted.Map.Revision, final.Map.Revision)
	}
	if final.Map.Popup != "Paris, FR" {
		t.Errorf("expected popup 'Paris, FR', got %q", final.Map.Popup)
	}
	if len(final.Panel) != 4 || final.Panel[0].Value != "192.0.2.10" {
		t.Errorf("unexpected panel %+v", final.Panel)
	}
	if len(env.history.Saved()) != 1 {
		t.Errorf("expected the lookup to be recorded in history")
	}
}

// TestTrackerHandler_Lookup_Form tests form-encoded submissions
func TestTrackerHandler_Lookup_Form(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{"query": {"8.8.8.8"}}
	req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	env.handler.Lookup(rec, req)
	env.waitIdle(t)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", rec.Code)
	}
	if calls := env.provider.Calls(); len(calls) != 1 || calls[0] != "8.8.8.8" {
		t.Errorf("expected one lookup for 8.8.8.8, got %v", calls)
	}
}

// TestTrackerHandler_Lookup_FailureKeepsState tests that a failed lookup leaves the map alone
func TestTrackerHandler_Lookup_FailureKeepsState(t *testing.T) {
	env := newTestEnv(t)
	env.provider.LookupError = errors.New("network down")
	before := env.view.Snapshot(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(`{"query":"8.8.8.8"}`))
	req.Header.Set("Content-Type", "application/json")
	env.handler.Lookup(httptest.NewRecorder(), req)
	env.waitIdle(t)

	after := env.view.Snapshot(nil)
	if after.Revision != before.Revision || after.Center != tracker.DefaultCenter {
		t.Errorf("expected map unchanged at default center, got %+v", after)
	}
	if env.ctrl.State().Result != nil {
		t.Error("expected no result after failure")
	}
}

// TestTrackerHandler_Locate tests the self lookup endpoint
func TestTrackerHandler_Locate(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()

	env.handler.Locate(rec, httptest.NewRequest(http.MethodPost, "/v1/locate", nil))
	env.waitIdle(t)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", rec.Code)
	}
	if env.provider.LookupSelfCalls != 1 {
		t.Errorf("expected 1 self lookup, got %d", env.provider.LookupSelfCalls)
	}
	if result := env.ctrl.State().Result; result == nil || result.IP != "203.0.113.7" {
		t.Errorf("unexpected result %+v", result)
	}
}

// TestTrackerHandler_Viewport tests the responsive-layout flag
func TestTrackerHandler_Viewport(t *testing.T) {
	tests := []struct {
		name           string
		width          string
		expectedStatus int
		expectedMobile bool
	}{
		{"desktop width", "1280", http.StatusOK, false},
		{"breakpoint is desktop", "768", http.StatusOK, false},
		{"mobile width", "767", http.StatusOK, true},
		{"missing width", "", http.StatusBadRequest, true},
		{"non-numeric width", "wide", http.StatusBadRequest, true},
		{"negative width", "-1", http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := httptest.NewRequest(http.MethodPost, "/v1/viewport?width="+tt.width, nil)
			rec := httptest.NewRecorder()

			env.handler.Viewport(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if got := env.ctrl.State().Mobile; got != tt.expectedMobile {
				t.Errorf("expected mobile=%v, got %v", tt.expectedMobile, got)
			}
		})
	}
}

// TestTrackerHandler_History tests listing recent lookups
func TestTrackerHandler_History(t *testing.T) {
	env := newTestEnv(t)
	for _, query := range []string{"8.8.8.8", "paris.example"} {
		env.history.Save(models.HistoryEntry{Query: query})
	}

	rec := httptest.NewRecorder()
	env.handler.History(rec, httptest.NewRequest(http.MethodGet, "/v1/history?limit=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var entries []models.HistoryEntry
	json.NewDecoder(rec.Body).Decode(&entries)
	if len(entries) != 1 || entries[0].Query != "paris.example" {
		t.Errorf("expected newest entry only, got %+v", entries)
	}
}

// TestTrackerHandler_History_Errors tests invalid limits and store failures
func TestTrackerHandler_History_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.History(rec, httptest.NewRequest(http.MethodGet, "/v1/history?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid limit, got %d", rec.Code)
	}

	env.history.RecentError = errors.New("connection reset")
	rec = httptest.NewRecorder()
	env.handler.History(rec, httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500 for store error, got %d", rec.Code)
	}
	if calls := env.history.RecentCalls; len(calls) != 1 || calls[0] != store.DefaultCapacity {
		t.Errorf("expected default limit %d, got %v", store.DefaultCapacity, calls)
	}
}

// TestTrackerHandler_Page tests the rendered page
func TestTrackerHandler_Page(t *testing.T) {
	env := newTestEnv(t)
	env.ctrl.Submit(context.Background(), "8.8.8.8")

	rec := httptest.NewRecorder()
	env.handler.Page(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML content type, got %s", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"IP Address Tracker", "IP ADDRESS", "Mountain View, California", "UTC -07:00", "Google LLC", "leaflet"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

// TestTrackerHandler_Page_NoResult tests that the panel is hidden before any lookup
func TestTrackerHandler_Page_NoResult(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.Page(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `id="panel" class="hidden"`) {
		t.Error("expected hidden panel")
	}
	if strings.Contains(body, "IP ADDRESS") {
		t.Error("expected no panel fields before a lookup")
	}
}
