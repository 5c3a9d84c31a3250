// Package telemetry holds the Prometheus collectors exported by the relay.
//
// Every method is safe on a nil *Metrics, so components can be built without
// metrics in tests.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ciphera"

// Lobby event labels.
const (
	EventJoin      = "join"
	EventReconnect = "reconnect"
	EventLeave     = "leave"
)

// Handshake and message result labels.
const (
	ResultAdmitted  = "admitted"
	ResultRejected  = "rejected"
	ResultDelivered = "delivered"
)

// Metrics holds the relay's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	members       prometheus.Gauge
	events        *prometheus.CounterVec
	handshakes    *prometheus.CounterVec
	messages      *prometheus.CounterVec
	fanoutDropped prometheus.Counter
	connections   prometheus.Gauge
}

// New registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		members: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lobby",
			Name:      "members",
			Help:      "Identities currently present in the lobby directory.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lobby",
			Name:      "events_total",
			Help:      "Directory mutations by kind.",
		}, []string{"event"}),
		handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Authentication handshakes by result and reason.",
		}, []string{"result", "reason"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Inbound messages by pipeline result.",
		}, []string{"result"}),
		fanoutDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lobby",
			Name:      "fanout_dropped_total",
			Help:      "Membership deltas that could not be pushed to a member.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "connections",
			Help:      "Open WebSocket connections, authenticated or not.",
		}),
	}
	m.registry.MustRegister(
		m.members,
		m.events,
		m.handshakes,
		m.messages,
		m.fanoutDropped,
		m.connections,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SetMembers records the current directory size.
func (m *Metrics) SetMembers(n int) {
	if m == nil {
		return
	}
	m.members.Set(float64(n))
}

// LobbyEvent counts one join, reconnect or leave.
func (m *Metrics) LobbyEvent(event string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event).Inc()
}

// Handshake counts one finished authentication attempt.
func (m *Metrics) Handshake(result, reason string) {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues(result, reason).Inc()
}

func (m *Metrics) Message(result string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(result).Inc()
}

func (m *Metrics) FanoutDropped() {
	if m == nil {
		return
	}
	m.fanoutDropped.Inc()
}

// ConnOpened and ConnClosed track open WebSocket connections.
func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}
