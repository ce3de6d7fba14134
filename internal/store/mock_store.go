package store

import (
	"sync"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// MockStore is a test double for the Store interface
// It records saved entries and can be told to fail
type MockStore struct {
	mu sync.Mutex

	Entries []models.HistoryEntry // oldest first

	// Track method calls for verification in tests
	SaveCalls   int
	RecentCalls []int
	CloseCalled bool

	// Control behavior for error scenarios
	SaveError   error
	RecentError error
	CloseError  error
}

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Save implements the Store interface
func (m *MockStore) Save(entry models.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

// Recent implements the Store interface
func (m *MockStore) Recent(limit int) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecentCalls = append(m.RecentCalls, limit)
	if m.RecentError != nil {
		return nil, m.RecentError
	}

	if limit <= 0 || limit > len(m.Entries) {
		limit = len(m.Entries)
	}
	out := make([]models.HistoryEntry, 0, limit)
	for i := len(m.Entries) - 1; i >= len(m.Entries)-limit; i-- {
		out = append(out, m.Entries[i])
	}
	return out, nil
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.CloseCalled = true
	return m.CloseError
}

// Saved returns a copy of the saved entries
func (m *MockStore) Saved() []models.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.HistoryEntry(nil), m.Entries...)
}
