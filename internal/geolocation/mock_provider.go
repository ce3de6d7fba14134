package geolocation

import (
	"context"
	"fmt"
	"sync"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// MockProvider is a test double for the Provider interface
// It allows tests to control results and verify interactions
type MockProvider struct {
	mu sync.Mutex

	// Results maps a query to the result Lookup returns
	Results map[string]*models.LookupResult
	// SelfResult is returned by LookupSelf
	SelfResult *models.LookupResult

	// Control error scenarios
	LookupError error
	SelfError   error

	// Gate, when set, blocks each call until a value is received for that query
	// ("" for LookupSelf). Used to control completion order in race tests.
	Gate map[string]chan struct{}

	// Track method calls for verification in tests
	LookupCalls     []string
	LookupSelfCalls int
}

// NewMockProvider creates a provider pre-populated with common test addresses
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Results: map[string]*models.LookupResult{
			"8.8.8.8": {
				IP: "8.8.8.8",
				Location: models.Location{
					Country: "US", Region: "California", City: "Mountain View",
					Lat: 37.40599, Lng: -122.078514, Timezone: "-07:00",
				},
				ISP: "Google LLC",
			},
			"paris.example": {
				IP: "192.0.2.10",
				Location: models.Location{
					Country: "FR", Region: "Ile-de-France", City: "Paris",
					Lat: 48.8566, Lng: 2.3522, Timezone: "+01:00",
				},
				ISP: "Example Telecom",
			},
		},
		SelfResult: &models.LookupResult{
			IP: "203.0.113.7",
			Location: models.Location{
				Country: "United Kingdom", Region: "England", City: "London",
				Lat: 51.5072, Lng: -0.1276, Timezone: "Europe/London",
			},
			ISP: "Example Broadband",
		},
	}
}

// Lookup implements the Provider interface
func (m *MockProvider) Lookup(ctx context.Context, query string) (*models.LookupResult, error) {
	m.mu.Lock()
	m.LookupCalls = append(m.LookupCalls, query)
	gate := m.Gate[query]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LookupError != nil {
		return nil, m.LookupError
	}
	result, ok := m.Results[query]
	if !ok {
		return nil, fmt.Errorf("%w: no mock result for %q", ErrBadStatus, query)
	}
	copied := *result
	return &copied, nil
}

// LookupSelf implements the Provider interface
func (m *MockProvider) LookupSelf(ctx context.Context) (*models.LookupResult, error) {
	m.mu.Lock()
	m.LookupSelfCalls++
	gate := m.Gate[""]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SelfError != nil {
		return nil, m.SelfError
	}
	if m.SelfResult == nil {
		return nil, fmt.Errorf("%w: no mock self result", ErrBadStatus)
	}
	copied := *m.SelfResult
	return &copied, nil
}

// Calls returns a copy of the recorded Lookup queries
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.LookupCalls...)
}
