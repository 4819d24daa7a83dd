// Package metrics holds the Prometheus collectors for the AirLink service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exports. All methods are safe
// on a nil receiver so packages can run without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	SearchRequests   prometheus.Counter
	SearchResults    prometheus.Histogram
	RulePreviews     prometheus.Counter
	RuleMatches      prometheus.Histogram
	LoginAttempts    *prometheus.CounterVec
	SessionsPurged   prometheus.Counter
	WorkspaceActions *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airlink_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "airlink_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		SearchRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "airlink_pro_search_requests_total",
			Help: "Total number of contractor searches",
		}),
		SearchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "airlink_pro_search_results",
			Help:    "Number of contractors returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		RulePreviews: f.NewCounter(prometheus.CounterOpts{
			Name: "airlink_signal_rule_previews_total",
			Help: "Total number of signal rule previews evaluated",
		}),
		RuleMatches: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "airlink_signal_rule_matches",
			Help:    "Number of events matched per rule preview",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airlink_login_attempts_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		SessionsPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "airlink_sessions_purged_total",
			Help: "Expired sessions removed by the purge job",
		}),
		WorkspaceActions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airlink_workspace_actions_total",
			Help: "Workspace actions dispatched by type",
		}, []string{"action"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by chi route pattern, so path parameters do
// not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveSearch(results int) {
	if m == nil {
		return
	}
	m.SearchRequests.Inc()
	m.SearchResults.Observe(float64(results))
}

func (m *Metrics) ObserveRulePreview(matches int) {
	if m == nil {
		return
	}
	m.RulePreviews.Inc()
	m.RuleMatches.Observe(float64(matches))
}

// ObserveLogin records a login attempt; result is "ok", "invalid" or "limited".
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) AddSessionsPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsPurged.Add(float64(n))
}

func (m *Metrics) ObserveAction(action string) {
	if m == nil {
		return
	}
	m.WorkspaceActions.WithLabelValues(action).Inc()
}
