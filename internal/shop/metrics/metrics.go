// Package metrics holds the Prometheus collectors of the shop service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shop"

type Metrics struct {
	// Requests counts handled requests.
	// Labels: method, route (mux pattern), status.
	Requests *prometheus.CounterVec

	RequestDuration *prometheus.HistogramVec

	// AuthRejections counts requests turned away by authentication or
	// authorization. Labels: reason ("missing", "expired",
	// "invalid_signature", "malformed", "no_secret", "forbidden").
	AuthRejections *prometheus.CounterVec

	// Uploads counts upload admission outcomes.
	// Labels: outcome ("stored", "invalid_type", "too_large", "store_failed").
	Uploads *prometheus.CounterVec

	Logins *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			// bcrypt and uploads dominate the upper buckets
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),

		AuthRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_rejections_total",
			Help:      "Requests rejected by authentication or authorization",
		}, []string{"reason"}),

		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload admission outcomes",
		}, []string{"outcome"}),

		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
	}
}

// AuthRejected matches httpx.RejectFunc.
func (m *Metrics) AuthRejected(reason string) {
	m.AuthRejections.WithLabelValues(reason).Inc()
}

// UploadOutcome is the observer handed to upload.New.
func (m *Metrics) UploadOutcome(outcome string) {
	m.Uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LoginOutcome(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency. It must sit directly
// above the ServeMux so r.Pattern is set once the mux has routed.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := slogx.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status())).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
