// Package metrics exposes Prometheus instrumentation for the chat service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service's collectors on a private registry so that
// multiple instances (e.g. in tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	ActiveConnections prometheus.Gauge
	EventsTotal       *prometheus.CounterVec
	DeliveriesTotal   prometheus.Counter
	EvictionsTotal    prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_active_connections",
			Help: "Number of currently connected WebSocket clients.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_events_total",
			Help: "Inbound client events processed, by event name.",
		}, []string{"event"}),
		DeliveriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_deliveries_total",
			Help: "Outbound payloads delivered to clients.",
		}),
		EvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_evictions_total",
			Help: "Clients evicted because their send buffer was full.",
		}),
	}
	m.registry.MustRegister(m.ActiveConnections, m.EventsTotal, m.DeliveriesTotal, m.EvictionsTotal)
	return m
}

// Handler exposes the registry for scraping at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
