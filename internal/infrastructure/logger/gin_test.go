package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ginFixture(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("request_id", "req-7")
		c.Next()
	})
	engine.Use(Recovery(log))
	engine.Use(GinMiddleware(log))
	return engine, logs
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGinMiddlewareLogsRequest(t *testing.T) {
	engine, logs := ginFixture(t)
	engine.GET("/api/v1/invoices", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"results": []string{}})
	})

	serve(engine, http.MethodGet, "/api/v1/invoices?month=3&year=2024")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/v1/invoices", fields["path"])
	assert.Equal(t, "month=3&year=2024", fields["query"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestGinMiddlewareWarnsOnClientError(t *testing.T) {
	engine, logs := ginFixture(t)
	engine.GET("/api/v1/invoices/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	serve(engine, http.MethodGet, "/api/v1/invoices/0a1b")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestGinMiddlewareErrorsOnServerError(t *testing.T) {
	engine, logs := ginFixture(t)
	engine.GET("/api/v1/invoices", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	serve(engine, http.MethodGet, "/api/v1/invoices")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestGinMiddlewareDemotesHealthProbes(t *testing.T) {
	engine, logs := ginFixture(t)
	engine.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(engine, http.MethodGet, "/health")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestGinMiddlewarePropagatesRequestIDToContext(t *testing.T) {
	engine, _ := ginFixture(t)
	var captured string
	engine.GET("/api/v1/invoices", func(c *gin.Context) {
		captured = RequestIDFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	serve(engine, http.MethodGet, "/api/v1/invoices")
	assert.Equal(t, "req-7", captured)
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	engine, logs := ginFixture(t)
	engine.GET("/api/v1/invoices", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(engine, http.MethodGet, "/api/v1/invoices")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["panic"])
}
