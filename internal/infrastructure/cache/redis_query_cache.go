package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Constants for Redis cache configuration
const (
	defaultScanBatchSize = 100
)

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisQueryCache implements invoicing.QueryCache using Redis
type RedisQueryCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisQueryCacheOption is a functional option for configuring the cache
type RedisQueryCacheOption func(*RedisQueryCache)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisQueryCacheOption {
	return func(c *RedisQueryCache) {
		c.logger = logger
	}
}

// NewRedisQueryCache creates a new Redis-based query cache
func NewRedisQueryCache(cfg RedisConfig, opts ...RedisQueryCacheOption) (*RedisQueryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisQueryCache{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisQueryCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisQueryCacheWithClient(client *redis.Client, opts ...RedisQueryCacheOption) *RedisQueryCache {
	cache := &RedisQueryCache{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get retrieves a cached payload. A missing key is reported as
// (nil, false, nil), not as an error.
func (c *RedisQueryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("Failed to get payload from cache",
			zap.String("key", key),
			zap.Error(err))
		return nil, false, fmt.Errorf("failed to get payload from cache: %w", err)
	}

	c.logger.Debug("Cache hit", zap.String("key", key))
	return data, true, nil
}

// Set stores a payload under the key with the given TTL
func (c *RedisQueryCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Error("Failed to set payload in cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set payload in cache: %w", err)
	}

	c.logger.Debug("Cached payload",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// DeleteByPrefix removes every key under the prefix. Uses SCAN to avoid
// blocking Redis with the KEYS command.
func (c *RedisQueryCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, prefix+"*", defaultScanBatchSize).Result()
		if err != nil {
			c.logger.Error("Failed to scan cache keys",
				zap.String("prefix", prefix),
				zap.Error(err))
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Error("Failed to delete cache keys",
					zap.String("prefix", prefix),
					zap.Error(err))
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	c.logger.Info("Invalidated cache namespace",
		zap.String("prefix", prefix),
		zap.Int64("deleted_count", deletedCount))
	return nil
}

// Close releases any resources held by the cache
func (c *RedisQueryCache) Close() error {
	// Only close client if we own it
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisQueryCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisQueryCache implements QueryCache
var _ invoicing.QueryCache = (*RedisQueryCache)(nil)
