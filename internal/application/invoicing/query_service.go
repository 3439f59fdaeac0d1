package invoicing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"go.uber.org/zap"
)

// Cached read operations, named for the cache key codec
const (
	opList        = "list"
	opPurchase    = "purchase"
	opSell        = "sell"
	opDashboard   = "dashboard"
	opDetail      = "detail"
	opPersonNames = "person_names"
)

// InvoiceQueryService serves the read side of the ledger: filtered lists,
// type-scoped views, the dashboard summary and single-record retrieval, all
// memoized through the query cache. Cache failures are absorbed and treated
// as misses; the record store stays the source of truth.
type InvoiceQueryService struct {
	invoices invoicing.InvoiceRepository
	persons  invoicing.PersonRepository
	cache    invoicing.QueryCache
	ttl      invoicing.CacheConfig
	logger   *zap.Logger
}

// NewInvoiceQueryService creates a new InvoiceQueryService
func NewInvoiceQueryService(
	invoices invoicing.InvoiceRepository,
	persons invoicing.PersonRepository,
	cache invoicing.QueryCache,
	ttl invoicing.CacheConfig,
	logger *zap.Logger,
) *InvoiceQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceQueryService{
		invoices: invoices,
		persons:  persons,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// List returns the generic list view: both per-type totals plus the requested
// page of the filtered set.
func (s *InvoiceQueryService) List(ctx context.Context, filter invoicing.InvoiceFilter) (*ListResult, error) {
	key := invoicing.QueryCacheKey(opList, filter)

	var cached ListResult
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	set, err := s.invoices.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	totals := invoicing.AggregateListTotals(set)
	page := invoicing.Paginate(set, filter.Skip, filter.Take)

	result := &ListResult{
		TotalPurchase: totals.TotalPurchase.InexactFloat64(),
		TotalSell:     totals.TotalSell.InexactFloat64(),
		Results:       toInvoiceSummaries(page),
	}
	s.cacheSet(ctx, key, result, s.ttl.ListTTL)
	return result, nil
}

// Purchases returns the purchase-only scoped view.
func (s *InvoiceQueryService) Purchases(ctx context.Context, filter invoicing.InvoiceFilter) (*ScopedResult, error) {
	return s.scoped(ctx, opPurchase, invoicing.InvoiceTypePurchase, filter)
}

// Sales returns the sale-only scoped view.
func (s *InvoiceQueryService) Sales(ctx context.Context, filter invoicing.InvoiceFilter) (*ScopedResult, error) {
	return s.scoped(ctx, opSell, invoicing.InvoiceTypeSale, filter)
}

func (s *InvoiceQueryService) scoped(ctx context.Context, op string, invType invoicing.InvoiceType, filter invoicing.InvoiceFilter) (*ScopedResult, error) {
	filter = filter.WithType(invType)
	key := invoicing.QueryCacheKey(op, filter)

	var cached ScopedResult
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	set, err := s.invoices.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	totals := invoicing.AggregateScopedTotals(set)
	page := invoicing.Paginate(set, filter.Skip, filter.Take)

	result := &ScopedResult{
		TotalAmount:    totals.TotalAmount.InexactFloat64(),
		TotalPending:   totals.TotalPending.InexactFloat64(),
		Count:          totals.Count,
		FiltersApplied: filter.AppliedMap(),
		Results:        toInvoiceSummaries(page),
	}
	s.cacheSet(ctx, key, result, s.ttl.ListTTL)
	return result, nil
}

// Dashboard returns the cross-cutting summary over the filtered set.
func (s *InvoiceQueryService) Dashboard(ctx context.Context, filter invoicing.InvoiceFilter) (*DashboardResult, error) {
	key := invoicing.QueryCacheKey(opDashboard, filter)

	var cached DashboardResult
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	set, err := s.invoices.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := invoicing.AggregateDashboard(set)
	result := &DashboardResult{
		Totals: DashboardTotals{
			TotalPurchase:   summary.TotalPurchase.InexactFloat64(),
			TotalSales:      summary.TotalSales.InexactFloat64(),
			PendingPurchase: summary.PendingPurchase.InexactFloat64(),
			PendingSales:    summary.PendingSales.InexactFloat64(),
		},
		RecentPurchases: toInvoiceSummaries(summary.RecentPurchases),
		RecentSales:     toInvoiceSummaries(summary.RecentSales),
		Pending:         toPendingGroups(summary.Pending),
	}
	s.cacheSet(ctx, key, result, s.ttl.ListTTL)
	return result, nil
}

// GetByID returns the full detail of one invoice.
func (s *InvoiceQueryService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceDetail, error) {
	key := invoicing.RecordCacheKey(opDetail, id.String())

	var cached InvoiceDetail
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := toInvoiceDetail(invoice)
	s.cacheSet(ctx, key, result, s.ttl.RecordTTL)
	return result, nil
}

// PersonNames returns all counterparty names. The list changes rarely, so it
// is cached with the longer lookup TTL.
func (s *InvoiceQueryService) PersonNames(ctx context.Context) (*PersonNamesResult, error) {
	key := invoicing.RecordCacheKey(opPersonNames, "all")

	var cached PersonNamesResult
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	names, err := s.persons.Names(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}

	result := &PersonNamesResult{PersonNames: names}
	s.cacheSet(ctx, key, result, s.ttl.LookupTTL)
	return result, nil
}

// cacheGet loads and decodes a cached payload. Backend failures and corrupt
// payloads are logged and reported as a miss, never as an error.
func (s *InvoiceQueryService) cacheGet(ctx context.Context, key string, out any) bool {
	payload, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("query cache read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.Warn("corrupt query cache payload, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return true
}

// cacheSet encodes and stores a payload. Failures are logged and dropped:
// a write that does not stick only costs the next reader a recomputation.
func (s *InvoiceQueryService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode query cache payload",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttl); err != nil {
		s.logger.Warn("query cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
}
