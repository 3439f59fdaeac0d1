package invoicing

import (
	"context"
	"time"
)

// QueryCache is the capability this domain needs from an external key-value
// cache: get, set with TTL, and namespace-wide delete. It is a good-faith
// memoization layer, never the system of record; implementations live in
// infrastructure.
type QueryCache interface {
	// Get returns the cached payload for key, or found=false on a miss.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)

	// Set stores payload under key for the given TTL.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// DeleteByPrefix removes every key carrying the given prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Close releases any resources held by the cache.
	Close() error
}

// CacheConfig holds the TTLs for the query cache. These are design defaults;
// any stale entry a failed invalidation leaves behind expires within one TTL.
type CacheConfig struct {
	ListTTL   time.Duration // list, scoped and dashboard views
	RecordTTL time.Duration // single-record retrieval
	LookupTTL time.Duration // person name lookup, changes rarely
}

// DefaultCacheConfig returns the default cache TTLs.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ListTTL:   5 * time.Minute,
		RecordTTL: 3 * time.Minute,
		LookupTTL: 10 * time.Minute,
	}
}
