package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/habitflow/backend/internal/domain/events"
	"github.com/habitflow/backend/pkg/config"
)

// Custom error types
var (
	ErrCacheNotFound   = errors.New("cache: key not found")
	ErrCacheConnection = errors.New("cache: connection error")
	ErrInvalidConfig   = errors.New("cache: invalid configuration")
)

// StatsEventChannel is the Redis channel for ledger/stats change events
const StatsEventChannel = "stats:events"

// Config holds the configuration for Redis client
type Config struct {
	Addr             string
	Password         string
	DB               int
	PoolSize         int
	MinIdleConns     int
	MaxRetries       int
	ConnTimeout      time.Duration
	OperationTimeout time.Duration
	DefaultTTL       time.Duration
	KeyPrefix        string
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:         100,
		MinIdleConns:     10,
		MaxRetries:       3,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: 2 * time.Second,
		DefaultTTL:       30 * time.Minute,
		KeyPrefix:        "habitflow:",
	}
}

// NewConfigFromEnv creates a Redis config from project configuration
func NewConfigFromEnv(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Addr = fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	c.Password = cfg.Redis.Password
	c.DB = cfg.Redis.DB
	if cfg.Server.Timeout > 0 {
		c.OperationTimeout = cfg.Server.Timeout
	}
	return c
}

// Metrics tracks cache hit/miss statistics with atomic operations
type Metrics struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// RedisClient wraps the Redis client with additional functionality
type RedisClient struct {
	client    *redis.Client
	metrics   *Metrics
	config    *Config
	closeOnce sync.Once
}

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(cfg *Config) (*RedisClient, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, ErrInvalidConfig
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.ConnTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &RedisClient{
		client:  client,
		metrics: &Metrics{},
		config:  cfg,
	}, nil
}

func (r *RedisClient) withContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.config.OperationTimeout)
}

func (r *RedisClient) prefixKey(key string) string {
	return r.config.KeyPrefix + key
}

// Get retrieves a value by key, tracking hit/miss metrics.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	opCtx, cancel := r.withContext(ctx)
	defer cancel()

	val, err := r.client.Get(opCtx, r.prefixKey(key)).Result()
	if err == redis.Nil {
		r.metrics.misses.Add(1)
		return "", ErrCacheNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	r.metrics.hits.Add(1)
	return val, nil
}

// Set stores a value with the given TTL. A zero TTL uses the default.
func (r *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	opCtx, cancel := r.withContext(ctx)
	defer cancel()

	if ttl <= 0 {
		ttl = r.config.DefaultTTL
	}

	if err := r.client.Set(opCtx, r.prefixKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return nil
}

// Delete removes one or more keys.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	opCtx, cancel := r.withContext(ctx)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefixKey(k)
	}

	if err := r.client.Del(opCtx, prefixed...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return nil
}

// ClearByPattern removes all keys matching a glob pattern using SCAN,
// never KEYS, so large keyspaces don't block the server.
func (r *RedisClient) ClearByPattern(ctx context.Context, pattern string) error {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(opCtx, cursor, r.prefixKey(pattern), 100).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheConnection, err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(opCtx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrCacheConnection, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// PublishStatsEvent publishes a stats-change event to the shared channel.
func (r *RedisClient) PublishStatsEvent(ctx context.Context, event *events.StatsEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stats event: %w", err)
	}

	opCtx, cancel := r.withContext(ctx)
	defer cancel()

	if err := r.client.Publish(opCtx, StatsEventChannel, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return nil
}

// SubscribeToStatsEvents invokes callback for every stats event until ctx is
// cancelled. Decode failures are reported through the callback error and
// skipped, not fatal.
func (r *RedisClient) SubscribeToStatsEvents(ctx context.Context, callback func(*events.StatsEvent) error) error {
	sub := r.client.Subscribe(ctx, StatsEventChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return ErrCacheConnection
			}
			var event events.StatsEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			if err := callback(&event); err != nil {
				return err
			}
		}
	}
}

// HealthCheck verifies the Redis connection is alive.
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	opCtx, cancel := r.withContext(ctx)
	defer cancel()

	if err := r.client.Ping(opCtx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return nil
}

// GetMetrics returns cache hit/miss counts and the hit rate.
func (r *RedisClient) GetMetrics() map[string]interface{} {
	hits := r.metrics.hits.Load()
	misses := r.metrics.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return map[string]interface{}{
		"hits":     hits,
		"misses":   misses,
		"hit_rate": hitRate,
	}
}

// GetClient exposes the underlying redis client for components that need
// raw access (rate limiter).
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.client.Close()
	})
	return err
}
