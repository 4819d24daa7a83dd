package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AirLinkPros/airlink-backend/internal/auth"
	"github.com/AirLinkPros/airlink-backend/internal/catalog"
	"github.com/AirLinkPros/airlink-backend/internal/config"
	"github.com/AirLinkPros/airlink-backend/internal/metrics"
	"github.com/AirLinkPros/airlink-backend/internal/workspace"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	reg, err := workspace.NewRegistry(4, cat.WorkspaceSeed)
	require.NoError(t, err)

	cfg := config.Config{LoginRPS: 1, LoginBurst: 5}
	// Only public routes are exercised, so no credential store is needed.
	var store auth.Store
	return newServer(cfg, store, cat, reg, metrics.New(), zap.NewNop()).routes()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRootHandler(t *testing.T) {
	rec := get(newTestRouter(t), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is up!\n", rec.Body.String())
}

func TestPublicRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := get(h, "/pros/search?category=roofing&sort=rating")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	rec = get(h, "/signals/preview")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(h, "/catalog/testimonials")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(h, "/workspace/")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	h := newTestRouter(t)
	get(h, "/pros/search")

	rec := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "airlink_http_requests_total"))
	assert.Contains(t, rec.Body.String(), `route="/pros/search"`)
}
