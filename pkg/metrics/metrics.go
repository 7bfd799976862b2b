// Package metrics holds the Prometheus collectors for tayobell. Every
// recording method is safe to call on a nil *Metrics so components can run
// without a registry in tests and one-off commands.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	RefreshOK    = "ok"
	RefreshEmpty = "empty"
	RefreshError = "error"
)

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal *prometheus.CounterVec

	IngestionRefreshes *prometheus.CounterVec
	ParseSkips         prometheus.Counter

	HubConnections    *prometheus.GaugeVec
	BroadcastsSent    *prometheus.CounterVec
	BroadcastsSkipped *prometheus.CounterVec

	CallMutations *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tayobell_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	ingestionRefreshes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tayobell_ingestion_refreshes_total",
			Help: "Station refreshes by result",
		},
		[]string{"result"},
	)

	parseSkips := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tayobell_ingestion_parse_skips_total",
		Help: "Feed items skipped because their arrival message could not be parsed",
	})

	hubConnections := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tayobell_hub_connections",
			Help: "Open realtime connections by class",
		},
		[]string{"class"},
	)

	broadcastsSent := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tayobell_hub_broadcasts_sent_total",
			Help: "Broadcast messages queued for delivery by message type",
		},
		[]string{"type"},
	)

	broadcastsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tayobell_hub_broadcasts_skipped_total",
			Help: "Broadcast messages dropped for a connection by message type",
		},
		[]string{"type"},
	)

	callMutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tayobell_call_mutations_total",
			Help: "Call store mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		ingestionRefreshes,
		parseSkips,
		hubConnections,
		broadcastsSent,
		broadcastsSkipped,
		callMutations,
	)

	return &Metrics{
		Registry:           registry,
		HTTPRequestsTotal:  httpRequestsTotal,
		IngestionRefreshes: ingestionRefreshes,
		ParseSkips:         parseSkips,
		HubConnections:     hubConnections,
		BroadcastsSent:     broadcastsSent,
		BroadcastsSkipped:  broadcastsSkipped,
		CallMutations:      callMutations,
	}
}

func (m *Metrics) HTTPRequest(method string, status string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, status).Inc()
}

func (m *Metrics) Refreshed(result string) {
	if m == nil {
		return
	}
	m.IngestionRefreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) ParseSkipped() {
	if m == nil {
		return
	}
	m.ParseSkips.Inc()
}

func (m *Metrics) ConnectionOpened(class string) {
	if m == nil {
		return
	}
	m.HubConnections.WithLabelValues(class).Inc()
}

func (m *Metrics) ConnectionClosed(class string) {
	if m == nil {
		return
	}
	m.HubConnections.WithLabelValues(class).Dec()
}

func (m *Metrics) BroadcastSent(messageType string) {
	if m == nil {
		return
	}
	m.BroadcastsSent.WithLabelValues(messageType).Inc()
}

func (m *Metrics) BroadcastSkipped(messageType string) {
	if m == nil {
		return
	}
	m.BroadcastsSkipped.WithLabelValues(messageType).Inc()
}

func (m *Metrics) CallMutation(operation string, outcome string) {
	if m == nil {
		return
	}
	m.CallMutations.WithLabelValues(operation, outcome).Inc()
}
