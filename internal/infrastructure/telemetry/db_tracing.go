package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracing instruments the ledger's GORM connection with otelgorm spans and
// annotates them with row counts, table names and slow-query events. The
// invoice list endpoints fetch the full filtered set in one query, so slow
// spans here are the first place to look when cache hit rates drop.
type DBTracing struct {
	slowThreshold time.Duration
	logFullSQL    bool
	provider      trace.TracerProvider
	logger        *zap.Logger
}

// DBTracingOption configures DBTracing.
type DBTracingOption func(*DBTracing)

// WithSlowQueryThreshold overrides the duration after which a query span gets
// a slow-query event. Default is 200ms.
func WithSlowQueryThreshold(d time.Duration) DBTracingOption {
	return func(t *DBTracing) {
		t.slowThreshold = d
	}
}

// WithFullSQL includes query variables in span attributes. Off by default,
// invoice rows carry counterparty names.
func WithFullSQL() DBTracingOption {
	return func(t *DBTracing) {
		t.logFullSQL = true
	}
}

// WithDBTracerProvider overrides the tracer provider used for query spans.
func WithDBTracerProvider(tp trace.TracerProvider) DBTracingOption {
	return func(t *DBTracing) {
		t.provider = tp
	}
}

// NewDBTracing creates the GORM tracing instrumentation.
func NewDBTracing(logger *zap.Logger, opts ...DBTracingOption) *DBTracing {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &DBTracing{
		slowThreshold: 200 * time.Millisecond,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type queryStartKey struct{}

// Register installs the otelgorm plugin plus the ledger's timing callbacks
// around every operation the repositories use.
func (t *DBTracing) Register(db *gorm.DB) error {
	pluginOpts := []otelgorm.Option{}
	if t.provider != nil {
		pluginOpts = append(pluginOpts, otelgorm.WithTracerProvider(t.provider))
	}
	if !t.logFullSQL {
		pluginOpts = append(pluginOpts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(pluginOpts...)); err != nil {
		return err
	}

	hooks := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"create",
			func(n string, fn func(*gorm.DB)) error { return db.Callback().Create().Before("gorm:create").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return db.Callback().Create().After("gorm:create").Register(n, fn) }},
		{"query",
			func(n string, fn func(*gorm.DB)) error { return db.Callback().Query().Before("gorm:query").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return db.Callback().Query().After("gorm:query").Register(n, fn) }},
		{"update",
			func(n string, fn func(*gorm.DB)) error { return db.Callback().Update().Before("gorm:update").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return db.Callback().Update().After("gorm:update").Register(n, fn) }},
		{"delete",
			func(n string, fn func(*gorm.DB)) error { return db.Callback().Delete().Before("gorm:delete").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return db.Callback().Delete().After("gorm:delete").Register(n, fn) }},
	}
	for _, h := range hooks {
		if err := h.before("ledger_trace:before_"+h.op, t.markStart); err != nil {
			return err
		}
		if err := h.after("ledger_trace:after_"+h.op, t.annotate); err != nil {
			return err
		}
	}

	t.logger.Info("database query tracing enabled",
		zap.Duration("slow_query_threshold", t.slowThreshold),
		zap.Bool("log_full_sql", t.logFullSQL),
	)
	return nil
}

// markStart stamps the statement context so annotate can measure elapsed time.
func (t *DBTracing) markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// annotate enriches the active query span after the operation ran.
func (t *DBTracing) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// Missing rows surface as shared.ErrNotFound upstream, not as span errors.
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > t.slowThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", t.slowThreshold.Milliseconds()),
			))
		}
	}
}
