// Package metrics exposes Prometheus instrumentation for the
// open-event client: connection state, reconnect attempts, events
// dispatched/dropped, ACK outcomes, and per-event crypto failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "openevent_client"

// Registry is a private registry so importing this package never
// registers against prometheus.DefaultRegisterer by side effect.
var Registry = prometheus.NewRegistry()

var (
	// ConnectionState is 1 for the current lifecycle state, 0 for the
	// rest; read it with the "state" label (disconnected, connecting,
	// connected, reconnecting, closed).
	ConnectionState = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "state",
			Help:      "Current lifecycle state (1 for the active state, 0 otherwise).",
		},
		[]string{"state"},
	)

	// ReconnectAttempts counts reconnect attempts made.
	ReconnectAttempts = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "reconnect_attempts_total",
			Help:      "Total number of reconnect attempts made.",
		},
	)

	// ConnectErrors counts connection attempts by resulting error kind.
	ConnectErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "errors_total",
			Help:      "Connection attempts that failed, by error kind.",
		},
		[]string{"kind"}, // client_error, server_error, connection_error, other
	)

	// PongTimeouts counts liveness-timer expirations that forced a
	// socket close.
	PongTimeouts = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "pong_timeouts_total",
			Help:      "Total number of pong-liveness timeouts.",
		},
	)

	// EventsDispatched counts events handed to a handler, by outcome.
	EventsDispatched = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Events dispatched to a handler, by outcome.",
		},
		[]string{"outcome"}, // ok, error
	)

	// EventsDropped counts inbound frames dropped before dispatch, by
	// reason.
	EventsDropped = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Inbound event frames dropped before dispatch, by reason.",
		},
		[]string{"reason"}, // after_goaway, malformed, missing_fields, bad_signature, decrypt_error
	)

	// AcksSent counts ACK frames sent, by code.
	AcksSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "acks_sent_total",
			Help:      "ACK frames sent, by resulting code.",
		},
		[]string{"code"}, // 200, 500
	)

	// GoAwaysReceived counts goaway frames received, by reason.
	GoAwaysReceived = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "goaways_total",
			Help:      "GoAway frames received, by reason.",
		},
		[]string{"reason"},
	)
)
