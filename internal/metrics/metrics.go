// Package metrics exposes Prometheus collectors for the signaling core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "proxima_rooms_active",
		Help: "Number of rooms currently alive.",
	})

	ParticipantsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "proxima_participants_active",
		Help: "Number of connected participants.",
	})

	EventsIn = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proxima_events_in_total",
		Help: "Inbound events by type, counted after decode.",
	}, []string{"type"})

	EventsOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proxima_events_out_total",
		Help: "Outbound frames accepted by a send buffer.",
	})

	FramesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proxima_frames_dropped_total",
		Help: "Outbound frames dropped due to backpressure or closed sockets.",
	})

	ProximityTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proxima_proximity_transitions_total",
		Help: "Proximity relation transitions by direction (entered/left).",
	}, []string{"direction"})
)

func init() {
	prometheus.MustRegister(
		RoomsActive,
		ParticipantsActive,
		EventsIn,
		EventsOut,
		FramesDropped,
		ProximityTransitions,
	)
}

// Handler exposes the registry at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
