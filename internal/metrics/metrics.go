// Package metrics exposes Prometheus collectors for room and connection
// activity. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roomrelay"

// Deletion reasons for the rooms_deleted_total counter.
const (
	ReasonEmpty  = "empty"
	ReasonReaped = "reaped"
)

// Metrics groups the relay's collectors.
type Metrics struct {
	RoomsActive       prometheus.Gauge
	ConnectionsActive prometheus.Gauge
	RoomsCreated      prometheus.Counter
	RoomsDeleted      *prometheus.CounterVec
	MessagesRelayed   prometheus.Counter
	DeliveriesDropped prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms currently held in the registry.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Open WebSocket connections.",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created on first join.",
		}),
		RoomsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_deleted_total",
			Help:      "Rooms deleted, by reason.",
		}, []string{"reason"}),
		MessagesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Chat messages accepted and broadcast.",
		}),
		DeliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_dropped_total",
			Help:      "Events dropped because the target was gone or saturated.",
		}),
	}
	reg.MustRegister(
		m.RoomsActive,
		m.ConnectionsActive,
		m.RoomsCreated,
		m.RoomsDeleted,
		m.MessagesRelayed,
		m.DeliveriesDropped,
	)
	return m
}

// Handler exposes the collectors gathered by g at /metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RoomCreated counts a new room and raises the active room gauge.
func (m *Metrics) RoomCreated() {
	if m == nil {
		return
	}
	m.RoomsCreated.Inc()
	m.RoomsActive.Inc()
}

// RoomDeleted counts a room removal under reason and lowers the active room gauge.
func (m *Metrics) RoomDeleted(reason string) {
	if m == nil {
		return
	}
	m.RoomsDeleted.WithLabelValues(reason).Inc()
	m.RoomsActive.Dec()
}

// ConnectionOpened raises the active connection gauge.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Inc()
}

// ConnectionClosed lowers the active connection gauge.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Dec()
}

// MessageRelayed counts one chat message accepted into a room.
func (m *Metrics) MessageRelayed() {
	if m == nil {
		return
	}
	m.MessagesRelayed.Inc()
}

// DeliveryDropped counts one frame that could not be queued for a connection.
func (m *Metrics) DeliveryDropped() {
	if m == nil {
		return
	}
	m.DeliveriesDropped.Inc()
}
