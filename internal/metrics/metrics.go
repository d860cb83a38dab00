package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query status label values
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusInvalid  = "invalid"
	StatusError    = "error"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Ledger metrics
	EventsLoaded prometheus.Gauge
	Users        prometheus.Gauge

	// Query metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Reload metrics
	ReloadsTotal   *prometheus.CounterVec
	ReloadDuration prometheus.Histogram

	// Websocket metrics
	WebsocketClients prometheus.Gauge
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		EventsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "loginstats_events_loaded",
				Help: "Number of events held by the current ledger",
			},
		),
		Users: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "loginstats_users",
				Help: "Number of distinct users in the current ledger",
			},
		),

		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loginstats_queries_total",
				Help: "Total number of session queries by operation and status",
			},
			[]string{"op", "status"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loginstats_query_duration_seconds",
				Help:    "Duration of session queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),

		ReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loginstats_reloads_total",
				Help: "Total number of ledger reloads by source and status",
			},
			[]string{"source", "status"},
		),
		ReloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loginstats_reload_duration_seconds",
				Help:    "Duration of ledger reloads in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		WebsocketClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "loginstats_ws_clients",
				Help: "Number of connected websocket clients",
			},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.EventsLoaded)
	m.registry.MustRegister(m.Users)

	m.registry.MustRegister(m.QueriesTotal)
	m.registry.MustRegister(m.QueryDuration)

	m.registry.MustRegister(m.ReloadsTotal)
	m.registry.MustRegister(m.ReloadDuration)

	m.registry.MustRegister(m.WebsocketClients)
}

// ObserveQuery records one query outcome
func (m *Metrics) ObserveQuery(op, status string, elapsed time.Duration) {
	m.QueriesTotal.WithLabelValues(op, status).Inc()
	m.QueryDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveReload records one reload outcome and, on success, the new ledger size
func (m *Metrics) ObserveReload(source string, err error, events, users int, elapsed time.Duration) {
	if err != nil {
		m.ReloadsTotal.WithLabelValues(source, StatusError).Inc()
		return
	}
	m.ReloadsTotal.WithLabelValues(source, StatusOK).Inc()
	m.ReloadDuration.Observe(elapsed.Seconds())
	m.EventsLoaded.Set(float64(events))
	m.Users.Set(float64(users))
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
