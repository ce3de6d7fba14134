package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/redis/go-redis/v9"
)

// historyKey is the Redis list holding JSON-encoded entries, newest first
const historyKey = "iptracker:history"

// RedisStore implements Store using a capped Redis list
type RedisStore struct {
	client   *redis.Client
	ctx      context.Context
	capacity int
}

// NewRedisStore creates a new Redis store
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number (0-15, default is 0)
//   - capacity: number of entries kept; older ones are trimmed
func NewRedisStore(addr, password string, db, capacity int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &RedisStore{
		client:   client,
		ctx:      ctx,
		capacity: capacity,
	}, nil
}

// Save implements the Store interface.
// LPUSH and LTRIM run in one transaction so the list never exceeds capacity.
func (s *RedisStore) Save(entry models.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	_, err = s.client.TxPipelined(s.ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(s.ctx, historyKey, data)
		pipe.LTrim(s.ctx, historyKey, 0, int64(s.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

// Recent implements the Store interface
func (s *RedisStore) Recent(limit int) ([]models.HistoryEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	values, err := s.client.LRange(s.ctx, historyKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(values))
	for _, val := range values {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// IsEmpty reports whether the history list has no entries
func (s *RedisStore) IsEmpty() (bool, error) {
	n, err := s.client.LLen(s.ctx, historyKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check Redis history: %w", err)
	}
	return n == 0, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
