package kernel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrieve/nutrieve/app/routes"
	"github.com/nutrieve/nutrieve/internal/testdb"
	"github.com/nutrieve/nutrieve/pkg/auth"
	"github.com/nutrieve/nutrieve/pkg/mail"
)

func newKernel(t *testing.T) *HTTPKernel {
	t.Helper()
	return NewHTTPKernel(routes.Deps{
		DB:          testdb.Open(t),
		Tokens:      auth.NewTokenManager("kernel-test", time.Hour),
		Mailer:      mail.NewMailer(&mail.Fake{}, mail.Sender{Address: "hello@nutrieve.in"}),
		FrontendURL: "http://localhost:5173",
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRootAndNotFound(t *testing.T) {
	h := newKernel(t).Handler()

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"message":"Nutrieve API is running"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(t, h, "/api/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	k := newKernel(t)

	rec := get(t, k.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Message)
	assert.Equal(t, "up", body.Data["database"])
	assert.NoError(t, k.Ping(context.Background()))

	sqlDB, err := k.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec = get(t, k.Handler(), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Message)
	assert.Equal(t, "down", body.Data["database"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newKernel(t).Handler()
	get(t, h, "/api/products")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nutrieve_http_requests_total{method="GET",route="/api/products",status="200"}`)
}

func TestCORSPreflight(t *testing.T) {
	h := newKernel(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/cart/add", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouteTableIncludesOperationalRoutes(t *testing.T) {
	r := newKernel(t).Router()
	for _, name := range []string{"root", "health", "metrics", "auth.login", "leads.index"} {
		_, ok := r.Path(name)
		assert.True(t, ok, name)
	}
}
