// Package metrics exposes Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"ordermgmt/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ordermgmt"

// Lifecycle counts order lifecycle events. It implements ports.LifecycleMetrics.
type Lifecycle struct {
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	retries     *prometheus.CounterVec
}

// NewLifecycle registers the lifecycle counters on reg. It panics if they are
// already registered.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	lifecycle := NewLifecycle(reg)
//	lifecycle.TransitionApplied(order.Pending, order.Processing)
func NewLifecycle(reg prometheus.Registerer) *Lifecycle {
	m := &Lifecycle{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Applied order status transitions.",
		}, []string{"from", "to"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "conflicts_total",
			Help:      "Writes rejected by the optimistic version check.",
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "storage_retries_total",
			Help:      "Retries after transient storage failures.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.transitions, m.conflicts, m.retries)
	return m
}

// TransitionApplied counts one committed status change.
func (m *Lifecycle) TransitionApplied(from, to order.Status) {
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// ConflictDetected counts a write rejected by the version check.
func (m *Lifecycle) ConflictDetected(operation string) {
	m.conflicts.WithLabelValues(operation).Inc()
}

// StorageRetried counts one retry after a transient storage failure.
func (m *Lifecycle) StorageRetried(operation string) {
	m.retries.WithLabelValues(operation).Inc()
}

// HTTP records request counts and latency per route.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTP registers the request counter and latency histogram on reg.
//
// Example:
//
//	e := echo.New()
//	e.Use(NewHTTP(prometheus.DefaultRegisterer).Middleware())
func NewHTTP(reg prometheus.Registerer) *HTTP {
	m := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

// Middleware observes every request passing through echo.
func (m *HTTP) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(c.Request().Method, route).
				Observe(float64(time.Since(start).Microseconds()) / 1000)
			return err
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards lifecycle events. Used where no registry is wired.
type Nop struct{}

// TransitionApplied does nothing.
func (Nop) TransitionApplied(_, _ order.Status) {}

// ConflictDetected does nothing.
func (Nop) ConflictDetected(string) {}

// StorageRetried does nothing.
func (Nop) StorageRetried(string) {}
