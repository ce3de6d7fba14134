package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript increments the window counter and sets its expiry on first use.
// Running it as one script keeps INCR and EXPIRE atomic.
var allowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('EXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// RedisLimiter counts lookups per client in fixed windows stored in Redis,
// so every server instance shares one quota.
//
// Key format: "iptracker:ratelimit:{client}:{window}"
type RedisLimiter struct {
	client *redis.Client
	ctx    context.Context
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed limiter
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number (0-15, default is 0)
//   - limit: lookups allowed per client per window
//   - window: window length, rounded up to whole seconds
func NewRedisLimiter(addr, password string, db, limit int, window time.Duration) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	if window < time.Second {
		window = time.Second
	}

	return &RedisLimiter{
		client: client,
		ctx:    ctx,
		limit:  int64(limit),
		window: window.Round(time.Second),
		now:    time.Now,
	}, nil
}

// Allow implements the Limiter interface.
// Redis errors fail open.
func (l *RedisLimiter) Allow(key string) bool {
	ttl := int64(l.window.Seconds()) * 2
	count, err := allowScript.Run(l.ctx, l.client, []string{l.windowKey(key, l.now())}, ttl).Int64()
	if err != nil {
		return true
	}
	return count <= l.limit
}

// windowKey names the counter for key in the window containing now
func (l *RedisLimiter) windowKey(key string, now time.Time) string {
	return fmt.Sprintf("iptracker:ratelimit:%s:%d", key, now.Unix()/int64(l.window.Seconds()))
}

// Close closes the Redis connection
func (l *RedisLimiter) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}
