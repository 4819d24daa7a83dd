package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/pros/zip/{zip}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, zip := range []string{"10001", "99999"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pros/zip/"+zip, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/pros/zip/{zip}", "404"))
	assert.Equal(t, 2.0, got)
}

func TestObserveHelpers(t *testing.T) {
	m := New()
	m.ObserveSearch(3)
	m.ObserveRulePreview(2)
	m.ObserveLogin("ok")
	m.ObserveLogin("invalid")
	m.ObserveLogin("invalid")
	m.AddSessionsPurged(4)
	m.AddSessionsPurged(-1)
	m.ObserveAction("signIn")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RulePreviews))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("invalid")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SessionsPurged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkspaceActions.WithLabelValues("signIn")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSearch(1)
		m.ObserveRulePreview(1)
		m.ObserveLogin("ok")
		m.AddSessionsPurged(1)
		m.ObserveAction("signOut")
	})

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
	assert.Nil(t, m.Registry())
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ObserveSearch(5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "airlink_pro_search_requests_total 1"))
}
