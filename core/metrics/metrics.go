// Package metrics provides Prometheus instrumentation for the sofie runtime.
//
// Each Metrics value owns its own registry, so several applications can live in
// one process (and in one test binary) without colliding on registration.
//
//	m := metrics.New("sofie")
//	srv := server.New(listener, server.Options{Metrics: m})
//	// expose m.Handler() on a separate listener
package metrics

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PatternLocal is the Fiber locals key under which the runtime stores the
// matched handler path pattern. It is used as the path label to keep
// cardinality bounded by the number of registered paths.
const PatternLocal = "sofie_pattern"

// Unmatched labels requests that reached no handler path.
const Unmatched = "unmatched"

// Metrics holds the standard HTTP collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	inFlight        prometheus.Gauge
	responseSize    *prometheus.HistogramVec
}

// New creates the collectors under namespace and registers them, together with
// the Go runtime and process collectors, on a fresh registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Response body sizes in bytes.",
				Buckets:   []float64{100, 1_000, 10_000, 100_000, 1_000_000},
			},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.inFlight,
		m.responseSize,
	)
	return m
}

// Registry exposes the underlying registry for custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records duration, count, in-flight and response size for every request.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		m.inFlight.Inc()
		defer m.inFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		path, ok := c.Locals(PatternLocal).(string)
		if !ok || path == "" {
			path = Unmatched
		}
		// Label values outlive the request; fasthttp reuses the method buffer.
		method := strings.Clone(c.Method())
		code := strconv.Itoa(status)

		m.requestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(method, path, code).Inc()
		m.responseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))
		return err
	}
}

// Handler serves the registry in the Prometheus text and OpenMetrics formats.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
