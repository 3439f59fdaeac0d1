package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ledger/backend/internal/domain/invoicing"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryQueryCache implements invoicing.QueryCache using in-memory storage.
// It is the fallback when Redis is not configured or unreachable at startup,
// and the cache of choice in tests.
type InMemoryQueryCache struct {
	entries sync.Map // map[string]*payloadEntry
	logger  *zap.Logger
	stopCh  chan struct{} // Channel to stop the cleanup goroutine
	stopped int32         // Atomic flag to track if cache is stopped

	// Stats for monitoring
	hits   int64
	misses int64
}

// payloadEntry wraps a cached payload with expiration time
type payloadEntry struct {
	payload   []byte
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *payloadEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryQueryCacheOption is a functional option for configuring the cache
type InMemoryQueryCacheOption func(*InMemoryQueryCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryQueryCacheOption {
	return func(c *InMemoryQueryCache) {
		c.logger = logger
	}
}

// NewInMemoryQueryCache creates a new in-memory query cache
func NewInMemoryQueryCache(opts ...InMemoryQueryCacheOption) *InMemoryQueryCache {
	cache := &InMemoryQueryCache{
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached payload. A missing or expired key is reported as
// (nil, false, nil).
func (c *InMemoryQueryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*payloadEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("Cache hit", zap.String("key", key))
			return entry.payload, true, nil
		}
		// Expired, remove from cache
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("Cache miss", zap.String("key", key))
	return nil, false, nil
}

// Set stores a payload under the key with the given TTL
func (c *InMemoryQueryCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	entry := &payloadEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}

	c.entries.Store(key, entry)
	c.logger.Debug("Cached payload",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// DeleteByPrefix removes every key under the prefix
func (c *InMemoryQueryCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	var deletedCount int

	c.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.entries.Delete(key)
			deletedCount++
		}
		return true
	})

	c.logger.Info("Invalidated cache namespace",
		zap.String("prefix", prefix),
		zap.Int("deleted_count", deletedCount))
	return nil
}

// Close releases any resources held by the cache
func (c *InMemoryQueryCache) Close() error {
	// Only close once
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryQueryCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries in the cache
func (c *InMemoryQueryCache) Count() (entries int) {
	c.entries.Range(func(_, _ any) bool {
		entries++
		return true
	})
	return entries
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryQueryCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in cache cleanup",
							zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryQueryCache) doCleanup() {
	var removed int

	c.entries.Range(func(key, value any) bool {
		entry := value.(*payloadEntry)
		if entry.isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.Int("removed", removed))
	}
}

// Ensure InMemoryQueryCache implements QueryCache
var _ invoicing.QueryCache = (*InMemoryQueryCache)(nil)
