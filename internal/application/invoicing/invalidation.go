package invoicing

import (
	"context"

	"github.com/ledger/backend/internal/domain/invoicing"
	"go.uber.org/zap"
)

// InvalidationCoordinator clears the whole query cache namespace after a
// mutation. The strategy is deliberately coarse: working out which cached
// aggregates a given write could affect is as expensive as recomputing them,
// so freshness is bought with a full-namespace wipe. A failed wipe is logged
// and swallowed; stale entries still expire within one TTL.
type InvalidationCoordinator struct {
	cache  invoicing.QueryCache
	logger *zap.Logger
}

// NewInvalidationCoordinator creates a new InvalidationCoordinator
func NewInvalidationCoordinator(cache invoicing.QueryCache, logger *zap.Logger) *InvalidationCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidationCoordinator{
		cache:  cache,
		logger: logger,
	}
}

// OnMutation requests a best-effort delete of every key in the domain's
// cache namespace. It never fails the mutation that triggered it.
func (c *InvalidationCoordinator) OnMutation(ctx context.Context) {
	if err := c.cache.DeleteByPrefix(ctx, invoicing.CacheKeyNamespace); err != nil {
		c.logger.Warn("query cache invalidation failed, stale entries expire with TTL",
			zap.String("namespace", invoicing.CacheKeyNamespace),
			zap.Error(err))
	}
}
