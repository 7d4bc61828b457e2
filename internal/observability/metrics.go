// Package observability provides the client's metrics and tracing.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the client.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// API metrics
	APIRequests *prometheus.CounterVec
	APIDuration *prometheus.HistogramVec
	BreakerOpen *prometheus.GaugeVec

	// Navigation metrics
	Navigations   *prometheus.CounterVec
	TemplateLoads *prometheus.CounterVec

	// Canvas metrics
	CanvasActions  *prometheus.CounterVec
	RenderFailures prometheus.Counter
}

// NewCollector creates a collector on its own registry with the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	apiRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "operation", "status"},
	)

	apiDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "operation"},
	)

	breakerOpen := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_open",
			Help:      "1 while the named circuit breaker is open",
		},
		[]string{"breaker"},
	)

	navigations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Total number of route navigations",
		},
		[]string{"route"},
	)

	templateLoads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_loads_total",
			Help:      "Total number of page template loads",
		},
		[]string{"status"},
	)

	canvasActions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "canvas_actions_total",
			Help:      "Total number of canvas actions sent to the API",
		},
		[]string{"action", "status"},
	)

	renderFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Total number of rich content render failures",
		},
	)

	registry.MustRegister(
		apiRequests,
		apiDuration,
		breakerOpen,
		navigations,
		templateLoads,
		canvasActions,
		renderFailures,
	)

	return &Collector{
		registry:       registry,
		APIRequests:    apiRequests,
		APIDuration:    apiDuration,
		BreakerOpen:    breakerOpen,
		Navigations:    navigations,
		TemplateLoads:  templateLoads,
		CanvasActions:  canvasActions,
		RenderFailures: renderFailures,
	}
}

// RecordAPIRequest records one API call. A status of 0 means the request
// never produced a response.
func (c *Collector) RecordAPIRequest(method, operation string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.APIRequests.WithLabelValues(method, operation, label).Inc()
	c.APIDuration.WithLabelValues(method, operation).Observe(duration.Seconds())
}

// SetBreakerOpen records the open/closed state of a circuit breaker.
func (c *Collector) SetBreakerOpen(name string, open bool) {
	if c == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	c.BreakerOpen.WithLabelValues(name).Set(v)
}

// RecordNavigation counts a dispatched route.
func (c *Collector) RecordNavigation(route string) {
	if c == nil {
		return
	}
	c.Navigations.WithLabelValues(route).Inc()
}

// RecordTemplateLoad counts a template fetch.
func (c *Collector) RecordTemplateLoad(err error) {
	if c == nil {
		return
	}
	c.TemplateLoads.WithLabelValues(outcome(err)).Inc()
}

// RecordCanvasAction counts a mutation issued from the graph canvas.
func (c *Collector) RecordCanvasAction(action string, err error) {
	if c == nil {
		return
	}
	c.CanvasActions.WithLabelValues(action, outcome(err)).Inc()
}

// RecordRenderFailure counts a rich content render failure.
func (c *Collector) RecordRenderFailure() {
	if c == nil {
		return
	}
	c.RenderFailures.Inc()
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
