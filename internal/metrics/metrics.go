package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pushrelay"

// Drop reasons reported by the relay loop.
const (
	ReasonMalformed  = "malformed"
	ReasonIncomplete = "incomplete"
	ReasonHubStopped = "hub_stopped"
)

// Relay defines the relay's Prometheus metrics. A nil *Relay is valid and
// records nothing.
type Relay struct {
	envelopesReceived prometheus.Counter
	envelopesDropped  *prometheus.CounterVec
	eventsDelivered   prometheus.Counter
	eventsSkipped     prometheus.Counter
	clientsConnected  prometheus.Gauge
	roomsActive       prometheus.Gauge
}

// NewRelay builds the relay collectors and registers them with reg.
func NewRelay(reg prometheus.Registerer) *Relay {
	m := &Relay{
		envelopesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelopes_received_total",
			Help:      "Messages received on the pub/sub channel.",
		}),
		envelopesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelopes_dropped_total",
			Help:      "Pub/sub messages dropped before delivery, by reason.",
		}, []string{"reason"}),
		eventsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivered_total",
			Help:      "Events queued to websocket clients.",
		}),
		eventsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_skipped_total",
			Help:      "Events not queued because the client's buffer was full.",
		}),
		clientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients_connected",
			Help:      "Currently registered websocket clients.",
		}),
		roomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms with at least one member.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.envelopesReceived,
			m.envelopesDropped,
			m.eventsDelivered,
			m.eventsSkipped,
			m.clientsConnected,
			m.roomsActive,
		)
	}
	return m
}

// EnvelopeReceived counts a raw pub/sub message.
func (m *Relay) EnvelopeReceived() {
	if m == nil {
		return
	}
	m.envelopesReceived.Inc()
}

// EnvelopeDropped counts a message that was not delivered.
func (m *Relay) EnvelopeDropped(reason string) {
	if m == nil {
		return
	}
	m.envelopesDropped.WithLabelValues(reason).Inc()
}

// ClientRegistered implements core.Observer.
func (m *Relay) ClientRegistered() {
	if m == nil {
		return
	}
	m.clientsConnected.Inc()
}

// ClientUnregistered implements core.Observer.
func (m *Relay) ClientUnregistered() {
	if m == nil {
		return
	}
	m.clientsConnected.Dec()
}

// RoomsActive implements core.Observer.
func (m *Relay) RoomsActive(n int) {
	if m == nil {
		return
	}
	m.roomsActive.Set(float64(n))
}

// EventDelivered implements core.Observer.
func (m *Relay) EventDelivered(delivered, dropped int) {
	if m == nil {
		return
	}
	m.eventsDelivered.Add(float64(delivered))
	m.eventsSkipped.Add(float64(dropped))
}
