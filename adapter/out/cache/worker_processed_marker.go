// Package cache implements Redis-backed adapters.
package cache

import (
	"context"
	"fmt"
	"time"

	"event_scraper/core/port/out"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "events:processed:"

// RedisMarker implements out.ProcessedMarker with one expiring key per message.
type RedisMarker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ out.ProcessedMarker = (*RedisMarker)(nil)

// NewRedisMarker creates a marker. A non-positive ttl keeps keys forever.
func NewRedisMarker(client *redis.Client, ttl time.Duration) *RedisMarker {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisMarker{client: client, ttl: ttl}
}

// NewClient parses a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func processedKey(messageID string) string {
	return processedKeyPrefix + messageID
}

// IsProcessed reports whether the message was decided by an earlier batch.
func (m *RedisMarker) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	n, err := m.client.Exists(ctx, processedKey(messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the message.
func (m *RedisMarker) MarkProcessed(ctx context.Context, messageID string) error {
	value := time.Now().UTC().Format(time.RFC3339)
	if err := m.client.Set(ctx, processedKey(messageID), value, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
