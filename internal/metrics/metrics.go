// Package metrics exports Prometheus counters for lifecycle operations,
// geocoding lookups and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Collector struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	geocodeDuration   *prometheus.HistogramVec
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	shutdownsListSize prometheus.Gauge
}

// NewCollector registers every metric on a fresh registry. A nil *Collector
// records nothing.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Collector{
		registry: reg,
		operationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shutdown_operations_total",
			Help: "Lifecycle operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		geocodeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shutdown_geocode_duration_seconds",
			Help:    "Latency of geocoding lookups",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20},
		}, []string{"kind", "outcome"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		shutdownsListSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "shutdown_records",
			Help: "Number of records returned by the last full list",
		}),
	}
}

func (c *Collector) Operation(op string, err error) {
	if c == nil {
		return
	}
	c.operationsTotal.WithLabelValues(op, outcome(err)).Inc()
}

func (c *Collector) Geocode(kind string, started time.Time, err error) {
	if c == nil {
		return
	}
	c.geocodeDuration.WithLabelValues(kind, outcome(err)).Observe(time.Since(started).Seconds())
}

func (c *Collector) ListSize(n int) {
	if c == nil {
		return
	}
	c.shutdownsListSize.Set(float64(n))
}

// Middleware records request counts and latency labelled by chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
