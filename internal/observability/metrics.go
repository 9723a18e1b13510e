package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the counters exported on /metrics.
type Metrics struct {
	recipeOps *prometheus.CounterVec
	uploads   *prometheus.CounterVec
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	recipeOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_operations_total",
		Help: "Recipe store operations by operation and result.",
	}, []string{"op", "result"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_image_uploads_total",
		Help: "Recipe image uploads by storage backend and result.",
	}, []string{"backend", "result"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	return &Metrics{
		recipeOps: registerCounterVec(registerer, recipeOps),
		uploads:   registerCounterVec(registerer, uploads),
		requests:  registerCounterVec(registerer, requests),
		latency:   registerHistogramVec(registerer, latency),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor serves the metrics of a specific gatherer.
func HandlerFor(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) IncRecipeOp(op, result string) {
	if m == nil || m.recipeOps == nil {
		return
	}
	m.recipeOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) IncUpload(backend, result string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(backend, result).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil || m.latency == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func registerCounterVec(registerer prometheus.Registerer, counter *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(counter); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return counter
}

func registerHistogramVec(registerer prometheus.Registerer, histogram *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := registerer.Register(histogram); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
	}
	return histogram
}
