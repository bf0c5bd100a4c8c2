package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"outagemonitor/internal/models"
)

const (
	fieldBody      = "body"
	fieldFetchedAt = "fetched_at"
)

// RedisStore keeps the cached page in a Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis using a redis:// URL. A bare host:port is
// accepted as well.
func NewRedisStore(url, key string) (*RedisStore, error) {
	if key == "" {
		return nil, fmt.Errorf("redis store requires a key")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return &RedisStore{client: redis.NewClient(opt), key: key}, nil
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load returns the cached page.
func (s *RedisStore) Load(ctx context.Context) (models.Snapshot, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("redis load %s: %w", s.key, err)
	}
	body, ok := values[fieldBody]
	if !ok || body == "" {
		return models.Snapshot{}, ErrNoSnapshot
	}

	snap := models.Snapshot{Body: body}
	if raw := values[fieldFetchedAt]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			snap.FetchedAt = ts
		}
	}
	return snap, nil
}

// Save replaces the cached page.
func (s *RedisStore) Save(ctx context.Context, snap models.Snapshot) error {
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	err := s.client.HSet(ctx, s.key,
		fieldBody, snap.Body,
		fieldFetchedAt, fetchedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("redis save %s: %w", s.key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
