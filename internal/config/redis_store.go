package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yousum/internal/domain"
)

const redisTimeout = 5 * time.Second

// RedisStore keeps the settings record under a fixed key so several machines
// pointing at the same server share one set of preferences.
type RedisStore struct {
	client *redis.Client
	key    string
}

// OpenRedisStore parses the URL and verifies the server answers a ping.
func OpenRedisStore(url string, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := SettingsKey
	if prefix != "" {
		key = prefix + ":" + SettingsKey
	}

	return &RedisStore{client: client, key: key}, nil
}

// Load reads the record or returns defaults when the key is absent.
func (s *RedisStore) Load() (domain.Settings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	return decodeSettings(data)
}

// Save overwrites the record without expiry.
func (s *RedisStore) Save(cfg domain.Settings) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Close releases the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
