package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements MetricsCollector using Prometheus.
// Metrics are registered on a registry owned by the collector.
type Collector struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	valueOperations *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	feedClients     prometheus.Gauge
	dependencyUp    *prometheus.GaugeVec
}

// NewCollector creates a new Prometheus metrics collector
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helloapi_http_requests_total",
				Help: "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "helloapi_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		valueOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helloapi_value_operations_total",
				Help: "Total number of values operations answered",
			},
			[]string{"operation"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helloapi_events_published_total",
				Help: "Total number of events published",
			},
			[]string{"topic", "result"},
		),
		feedClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "helloapi_feed_clients",
				Help: "Number of connected event feed clients",
			},
		),
		dependencyUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "helloapi_dependency_up",
				Help: "Whether a dependency passed its last health check (1) or not (0)",
			},
			[]string{"dependency"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler exposing the collector's metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records a handled HTTP request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordValueOperation increments the count of an answered values operation
func (c *Collector) RecordValueOperation(operation string) {
	c.valueOperations.WithLabelValues(operation).Inc()
}

// RecordEventPublished records the outcome of an event publication
func (c *Collector) RecordEventPublished(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.eventsPublished.WithLabelValues(topic, result).Inc()
}

// SetFeedClients sets the number of connected feed clients
func (c *Collector) SetFeedClients(count int) {
	c.feedClients.Set(float64(count))
}

// SetDependencyUp records the result of a dependency health check
func (c *Collector) SetDependencyUp(dependency string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	c.dependencyUp.WithLabelValues(dependency).Set(v)
}
