package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/iptracker/internal/metrics"
	"github.com/evyataryagoni/iptracker/internal/models"
)

// Store records successful lookups for the "recent searches" list.
// It is never consulted to answer a lookup.
type Store interface {
	// Save appends an entry
	Save(entry models.HistoryEntry) error

	// Recent returns up to limit entries, newest first. limit <= 0 means all.
	Recent(limit int) ([]models.HistoryEntry, error)

	// Close cleans up resources (database connections, file handles, etc.)
	Close() error
}

// Emptier is implemented by persistent backends that can report whether
// they already hold history
type Emptier interface {
	IsEmpty() (bool, error)
}

// Config selects and configures a history backend
type Config struct {
	Type     string // "memory", "csv", "redis" or "mysql"
	Capacity int    // maximum entries kept by memory and redis backends
	CSVPath  string
	MySQLDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New creates the configured backend (factory pattern)
func New(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "memory", "":
		return NewMemoryStore(cfg.Capacity), nil
	case "csv":
		return NewCSVStore(cfg.CSVPath)
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Capacity)
	case "mysql":
		return NewMySQLStore(cfg.MySQLDSN)
	default:
		return nil, fmt.Errorf("unknown history store type: %s (supported: 'memory', 'csv', 'redis', 'mysql')", cfg.Type)
	}
}

// instrumented records Prometheus metrics around another Store
type instrumented struct {
	Store
	backend string
	metrics *metrics.Metrics
}

// WithMetrics wraps s so every operation is counted and timed under backend.
// A nil m returns s unchanged.
func WithMetrics(s Store, backend string, m *metrics.Metrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, backend: backend, metrics: m}
}

func (i *instrumented) Save(entry models.HistoryEntry) error {
	start := time.Now()
	err := i.Store.Save(entry)
	i.observe("save", start, err)
	return err
}

func (i *instrumented) Recent(limit int) ([]models.HistoryEntry, error) {
	start := time.Now()
	entries, err := i.Store.Recent(limit)
	i.observe("recent", start, err)
	return entries, err
}

func (i *instrumented) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	i.metrics.HistoryOpsTotal.WithLabelValues(i.backend, operation, status).Inc()
	i.metrics.HistoryOpDuration.WithLabelValues(i.backend, operation).Observe(time.Since(start).Seconds())
}
