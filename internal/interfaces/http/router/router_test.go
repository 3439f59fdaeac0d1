package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func get(t *testing.T, engine *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterMountsUnderVersionedPrefix(t *testing.T) {
	engine := gin.New()

	invoices := NewGroup("invoicing", "/invoices")
	invoices.GET("", okHandler("list"))
	invoices.GET("/dashboard", okHandler("dashboard"))

	New(engine, WithVersion("v1")).Register(invoices).Setup()

	assert.Equal(t, http.StatusOK, get(t, engine, "/api/v1/invoices").Code)
	assert.Equal(t, http.StatusOK, get(t, engine, "/api/v1/invoices/dashboard").Code)
	assert.Equal(t, http.StatusNotFound, get(t, engine, "/invoices").Code)
}

func TestRouterDefaultVersion(t *testing.T) {
	engine := gin.New()

	persons := NewGroup("persons", "/persons")
	persons.GET("/names", okHandler("names"))

	New(engine).Register(persons).Setup()

	w := get(t, engine, "/api/v1/persons/names")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "names", w.Body.String())
}

func TestRouterRegistersMultipleGroups(t *testing.T) {
	engine := gin.New()

	invoices := NewGroup("invoicing", "/invoices")
	invoices.GET("", okHandler("invoices"))
	persons := NewGroup("persons", "/persons")
	persons.GET("/names", okHandler("names"))
	system := NewGroup("system", "/system")
	system.GET("/ping", okHandler("pong"))

	New(engine).Register(invoices, persons, system).Setup()

	assert.Equal(t, http.StatusOK, get(t, engine, "/api/v1/invoices").Code)
	assert.Equal(t, http.StatusOK, get(t, engine, "/api/v1/persons/names").Code)
	assert.Equal(t, "pong", get(t, engine, "/api/v1/system/ping").Body.String())
}

func TestGroupAllMethods(t *testing.T) {
	engine := gin.New()

	invoices := NewGroup("invoicing", "/invoices")
	invoices.GET("/:id", okHandler("get")).
		POST("", okHandler("create")).
		PUT("/:id", okHandler("update")).
		PATCH("/:id", okHandler("patch")).
		DELETE("/:id", okHandler("delete"))

	req := func(method, path string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, r)
		return w
	}

	New(engine).Register(invoices).Setup()

	assert.Equal(t, http.StatusOK, req(http.MethodPost, "/api/v1/invoices").Code)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.Equal(t, http.StatusOK, req(method, "/api/v1/invoices/abc").Code, method)
	}
}

func TestGroupStaticAndParamSiblings(t *testing.T) {
	// The invoice group mixes static paths with an :id catch at the same
	// level; both must stay routable.
	engine := gin.New()

	invoices := NewGroup("invoicing", "/invoices")
	invoices.GET("/purchase", okHandler("purchase"))
	invoices.GET("/sell", okHandler("sell"))
	invoices.GET("/:id", okHandler("byid"))

	New(engine).Register(invoices).Setup()

	assert.Equal(t, "purchase", get(t, engine, "/api/v1/invoices/purchase").Body.String())
	assert.Equal(t, "sell", get(t, engine, "/api/v1/invoices/sell").Body.String())
	assert.Equal(t, "byid", get(t, engine, "/api/v1/invoices/123").Body.String())
}

func TestGroupAccessors(t *testing.T) {
	g := NewGroup("invoicing", "/invoices")
	assert.Equal(t, "invoicing", g.Name())
	assert.Equal(t, "/invoices", g.Prefix())
}
