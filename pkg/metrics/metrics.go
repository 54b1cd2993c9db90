package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Connection / room state
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tycoon_connections_active",
			Help: "Currently open websocket connections",
		},
	)

	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tycoon_rooms_active",
			Help: "Rooms currently in the directory",
		},
	)

	// Message flow
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tycoon_messages_received_total",
			Help: "Inbound messages by type",
		},
		[]string{"type"},
	)

	UnknownMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tycoon_unknown_messages_total",
			Help: "Inbound messages dropped for an unrecognized type",
		},
	)

	FramesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tycoon_frames_sent_total",
			Help: "Frames handed to connection send queues",
		},
	)

	FramesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tycoon_frames_dropped_total",
			Help: "Frames dropped because a send queue was full",
		},
	)

	DeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tycoon_delivery_failures_total",
			Help: "Sends that failed against a dead connection",
		},
	)

	// Scheduler
	EventsArmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tycoon_admin_events_armed_total",
			Help: "Admin events armed",
		},
	)

	Reseeds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tycoon_reseeds_total",
			Help: "Per-room world reseed broadcasts",
		},
	)
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
