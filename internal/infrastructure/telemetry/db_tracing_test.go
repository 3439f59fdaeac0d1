package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type invoiceRow struct {
	ID     uint `gorm:"primaryKey"`
	Amount string
	IsPaid bool
}

func (invoiceRow) TableName() string { return "invoices" }

func openTracedDB(t *testing.T, opts ...DBTracingOption) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&invoiceRow{}))

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	tracing := NewDBTracing(zaptest.NewLogger(t), append(opts, WithDBTracerProvider(tp))...)
	require.NoError(t, tracing.Register(db))
	return db, recorder
}

func TestDBTracingRegisterInstallsCallbacks(t *testing.T) {
	db, _ := openTracedDB(t)

	for _, name := range []string{"ledger_trace:before_query", "ledger_trace:after_query"} {
		assert.NotNil(t, db.Callback().Query().Get(name), name)
	}
	for _, name := range []string{"ledger_trace:before_create", "ledger_trace:after_create"} {
		assert.NotNil(t, db.Callback().Create().Get(name), name)
	}
	for _, name := range []string{"ledger_trace:before_update", "ledger_trace:after_update"} {
		assert.NotNil(t, db.Callback().Update().Get(name), name)
	}
	for _, name := range []string{"ledger_trace:before_delete", "ledger_trace:after_delete"} {
		assert.NotNil(t, db.Callback().Delete().Get(name), name)
	}
}

func TestDBTracingEmitsQuerySpans(t *testing.T) {
	db, recorder := openTracedDB(t)

	require.NoError(t, db.Create(&invoiceRow{Amount: "500.00"}).Error)
	var rows []invoiceRow
	require.NoError(t, db.Find(&rows).Error)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	// One span per statement, created by the otelgorm plugin.
	assert.GreaterOrEqual(t, len(spans), 2)
}

func startRecordedStatement(t *testing.T, db *gorm.DB, recorder *tracetest.SpanRecorder) (*gorm.DB, func() sdktrace.ReadOnlySpan) {
	t.Helper()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("test").Start(context.Background(), "db.statement")

	tx := db.Session(&gorm.Session{NewDB: true})
	tx.Statement.Context = ctx
	return tx, func() sdktrace.ReadOnlySpan {
		span.End()
		ended := recorder.Ended()
		return ended[len(ended)-1]
	}
}

func TestDBTracingAnnotateSetsRowAndTableAttributes(t *testing.T) {
	db, _ := openTracedDB(t)
	recorder := tracetest.NewSpanRecorder()
	tracing := NewDBTracing(nil)

	tx, finish := startRecordedStatement(t, db, recorder)
	tx.Statement.Table = "invoices"
	tx.Statement.RowsAffected = 3
	tracing.markStart(tx)
	tracing.annotate(tx)

	span := finish()
	attrs := map[string]any{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, int64(3), attrs["db.rows_affected"])
	assert.Equal(t, "invoices", attrs["db.sql.table"])
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestDBTracingAnnotateMarksErrors(t *testing.T) {
	db, _ := openTracedDB(t)
	recorder := tracetest.NewSpanRecorder()
	tracing := NewDBTracing(nil)

	tx, finish := startRecordedStatement(t, db, recorder)
	tx.Error = errors.New("connection reset")
	tracing.annotate(tx)

	span := finish()
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "connection reset", span.Status().Description)
}

func TestDBTracingAnnotateIgnoresRecordNotFound(t *testing.T) {
	db, _ := openTracedDB(t)
	recorder := tracetest.NewSpanRecorder()
	tracing := NewDBTracing(nil)

	tx, finish := startRecordedStatement(t, db, recorder)
	tx.Error = gorm.ErrRecordNotFound
	tracing.annotate(tx)

	span := finish()
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestDBTracingSlowQueryEvent(t *testing.T) {
	db, _ := openTracedDB(t)
	recorder := tracetest.NewSpanRecorder()
	tracing := NewDBTracing(nil, WithSlowQueryThreshold(0))

	tx, finish := startRecordedStatement(t, db, recorder)
	tracing.markStart(tx)
	time.Sleep(time.Millisecond)
	tracing.annotate(tx)

	span := finish()
	var slow bool
	for _, kv := range span.Attributes() {
		if string(kv.Key) == "db.slow_query" {
			slow = kv.Value.AsBool()
		}
	}
	assert.True(t, slow)

	var eventNames []string
	for _, ev := range span.Events() {
		eventNames = append(eventNames, ev.Name)
	}
	assert.Contains(t, eventNames, "slow_query")
}

func TestDBTracingFastQueryHasNoSlowEvent(t *testing.T) {
	db, _ := openTracedDB(t)
	recorder := tracetest.NewSpanRecorder()
	tracing := NewDBTracing(nil, WithSlowQueryThreshold(time.Hour))

	tx, finish := startRecordedStatement(t, db, recorder)
	tracing.markStart(tx)
	tracing.annotate(tx)

	span := finish()
	assert.Empty(t, span.Events())
}
