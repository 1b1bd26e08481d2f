// Package metrics counts HTTP requests per route, method and status class and
// exposes them in the Prometheus text format.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name when none is configured.
const DefaultNamespace = "item_service"

// UnmatchedRoute labels requests that matched no registered route.
const UnmatchedRoute = "unmatched"

// Recorder owns a private registry with the HTTP collectors.
type Recorder struct {
	registry *prometheus.Registry

	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a recorder whose metric names start with namespace.
func New(namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status_class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		r.inFlight,
		r.requests,
		r.duration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registered metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Begin marks a request as in flight and returns the function that completes
// it.
func (r *Recorder) Begin() func(method, route string, status int, elapsed time.Duration) {
	r.inFlight.Inc()
	return func(method, route string, status int, elapsed time.Duration) {
		r.inFlight.Dec()
		r.Observe(method, route, status, elapsed)
	}
}

// Observe records one finished request.
func (r *Recorder) Observe(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = UnmatchedRoute
	}
	method = strings.ToUpper(method)
	r.requests.WithLabelValues(method, route, StatusClass(status)).Inc()
	r.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// InFlight returns the in-flight gauge for tests and diagnostics.
func (r *Recorder) InFlight() prometheus.Gauge {
	return r.inFlight
}

// Requests returns the counter for tests and diagnostics.
func (r *Recorder) Requests() *prometheus.CounterVec {
	return r.requests
}

// StatusClass maps 404 to "4xx". Codes outside 100..599 become "unknown".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
