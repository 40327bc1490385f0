package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore implements the cache.Store port on a Redis backend.
// It is strictly non-authoritative: a Redis outage degrades to cache misses
// on reads, and payment correctness never depends on a successful Set.
type RedisStore struct {
	client *redis.Client
	logger coreport.Logger
}

// NewRedisStore creates a Redis-backed cache store and verifies connectivity
func NewRedisStore(ctx context.Context, config Config, logger coreport.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}

	logger.Info("Connected to redis", map[string]any{"addr": config.Addr, "db": config.DB})

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

// Get returns the cached value, or ok=false on a miss
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Warn("Redis read failed, treating as cache miss", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return "", false, err
	}
	return value, true, nil
}

// Set stores a value with a TTL
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("Redis write failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Close releases the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
