package cache

import (
	"context"
	"time"
)

// NoopQueryCache is a QueryCache that never stores anything. It is used when
// query caching is disabled by configuration, so callers always hit the
// repository.
type NoopQueryCache struct{}

// NewNoopQueryCache creates a new NoopQueryCache
func NewNoopQueryCache() *NoopQueryCache {
	return &NoopQueryCache{}
}

// Get always reports a miss.
func (c *NoopQueryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set drops the payload.
func (c *NoopQueryCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return nil
}

// DeleteByPrefix is a no-op.
func (c *NoopQueryCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	return nil
}

// Close is a no-op.
func (c *NoopQueryCache) Close() error {
	return nil
}
