package store

import (
	"sync"

	"github.com/evyataryagoni/iptracker/internal/models"
)

const DefaultCapacity = 20

// MemoryStore keeps the most recent entries in a fixed-size ring
type MemoryStore struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
	next    int // index the next entry is written to
	full    bool
}

// NewMemoryStore creates a ring holding up to capacity entries
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{entries: make([]models.HistoryEntry, capacity)}
}

// Save implements the Store interface, overwriting the oldest entry when full
func (s *MemoryStore) Save(entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// Recent implements the Store interface
func (s *MemoryStore) Recent(limit int) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = len(s.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]models.HistoryEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out, nil
}

// Close implements the Store interface; there is nothing to release
func (s *MemoryStore) Close() error {
	return nil
}
