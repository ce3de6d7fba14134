package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTimeout is how long a client may go unseen before its limiter is dropped
const idleTimeout = 10 * time.Minute

// clientLimiter is one client's token bucket and when it was last used
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps a token bucket per client in process memory.
// Suitable for a single server instance.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time

	lastCleanup time.Time
}

// NewMemoryLimiter allows limit lookups per window per client, with bursts
// of up to limit.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		clients:     make(map[string]*clientLimiter),
		limit:       rate.Limit(float64(limit) / window.Seconds()),
		burst:       limit,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// Allow implements the Limiter interface
func (l *MemoryLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	client, ok := l.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}
	client.lastSeen = now

	l.cleanup(now)
	return client.limiter.AllowN(now, 1)
}

// cleanup drops clients idle for idleTimeout. Called with mu held.
func (l *MemoryLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < idleTimeout {
		return
	}

	threshold := now.Add(-idleTimeout)
	for key, client := range l.clients {
		if client.lastSeen.Before(threshold) {
			delete(l.clients, key)
		}
	}
	l.lastCleanup = now
}

// tracked returns the number of clients with a live limiter
func (l *MemoryLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Close implements the Limiter interface; there is nothing to release
func (l *MemoryLimiter) Close() error {
	return nil
}
