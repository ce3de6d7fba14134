package limiter

import (
	"fmt"
	"strings"
	"time"
)

// Limiter decides whether a client may start another geolocation lookup.
// Every lookup costs one request against the upstream API quota.
type Limiter interface {
	// Allow reports whether the client identified by key may proceed
	Allow(key string) bool

	// Close cleans up any resources (Redis connections, etc.)
	Close() error
}

// Config holds configuration for creating a limiter
type Config struct {
	Type   string        // "memory" or "redis"
	Limit  int           // lookups allowed per client per Window
	Window time.Duration // period over which Limit applies

	// Redis-specific config
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New creates a limiter based on the configuration (factory pattern)
func New(cfg Config) (Limiter, error) {
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", cfg.Limit)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", cfg.Window)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "memory", "":
		return NewMemoryLimiter(cfg.Limit, cfg.Window), nil

	case "redis":
		limiter, err := NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Limit, cfg.Window)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis limiter: %w", err)
		}
		return limiter, nil

	default:
		return nil, fmt.Errorf("unknown rate limiter type: %s (supported: 'memory', 'redis')", cfg.Type)
	}
}
