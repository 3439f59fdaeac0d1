package cache

import (
	"fmt"

	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// QueryCacheFactory creates query caches based on configuration
type QueryCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// QueryCacheFactoryOption is a functional option for configuring the factory
type QueryCacheFactoryOption func(*QueryCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) QueryCacheFactoryOption {
	return func(f *QueryCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback)
func WithInMemoryFallback(allow bool) QueryCacheFactoryOption {
	return func(f *QueryCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewQueryCacheFactory creates a new factory
func NewQueryCacheFactory(cfg config.RedisConfig, opts ...QueryCacheFactoryOption) *QueryCacheFactory {
	f := &QueryCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true, // Default to allowing fallback
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed query cache
func (f *QueryCacheFactory) CreateRedisCache() (invoicing.QueryCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisQueryCache(redisCfg, WithCacheLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis query cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory query cache
// This is suitable for single-instance deployments and testing
// WARNING: In-memory caches do not share invalidation across process
// instances, which can serve stale aggregates in distributed deployments
func (f *QueryCacheFactory) CreateInMemoryCache() invoicing.QueryCache {
	return NewInMemoryQueryCache(WithInMemoryLogger(f.logger))
}

// CreateCache creates a query cache based on whether Redis is available.
// It tries Redis first and falls back to in-memory if Redis is not available
// and AllowInMemoryFallback is true
func (f *QueryCacheFactory) CreateCache() (invoicing.QueryCache, error) {
	// Try Redis first
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis query cache")
		return cache, nil
	}

	// Check if fallback is allowed
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for query cache but unavailable: %w", err)
	}

	// Fall back to in-memory with warning
	f.logger.Warn("Redis unavailable, falling back to in-memory query cache. "+
		"Invalidation will not propagate across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
