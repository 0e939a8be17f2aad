package metrics

import (
	"net/http"
	"strconv"
	"time"

	"objectfs/core/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "objectfs"

// Metrics holds the registry and every collector.
type Metrics struct {
	reg *prometheus.Registry

	storageBytes   *prometheus.CounterVec
	storageOps     *prometheus.CounterVec
	storageLatency *prometheus.HistogramVec

	inflight prometheus.Gauge
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates a Metrics instance with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		storageBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "bytes_total",
			Help:      "Total bytes moved by storage operations.",
		}, []string{"op"}),
		storageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "ops_total",
			Help:      "Total storage operations by result and error kind.",
		}, []string{"op", "result", "kind"}),
		storageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "op_duration_seconds",
			Help:      "Histogram of storage operation durations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of inflight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed, partitioned by status code and method.",
		}, []string{"code", "method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of latencies for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}

	reg.MustRegister(
		m.storageBytes,
		m.storageOps,
		m.storageLatency,
		m.inflight,
		m.requests,
		m.latency,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Observe implements storage.Observer.
func (m *Metrics) Observe(op string, bytes int64, err error, dur time.Duration) {
	result, kind := "ok", ""
	if err != nil {
		result, kind = "error", storage.KindName(err)
	}
	if bytes > 0 {
		m.storageBytes.WithLabelValues(op).Add(float64(bytes))
	}
	m.storageOps.WithLabelValues(op, result, kind).Inc()
	m.storageLatency.WithLabelValues(op).Observe(dur.Seconds())
}

// Middleware records request counts and latencies.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m.inflight.Inc()
		defer m.inflight.Dec()

		start := time.Now()
		err := c.Next()

		code := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			} else {
				code = fiber.StatusInternalServerError
			}
		}
		labels := []string{strconv.Itoa(code), c.Method()}
		m.requests.WithLabelValues(labels...).Inc()
		m.latency.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
