package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(wsConnections, wsEventsDropped)
}

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Currently open websocket connections.",
		},
	)

	wsEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_events_dropped_total",
			Help: "Realtime events dropped because a client send buffer was full.",
		},
	)
)

func IncWSConnections()   { wsConnections.Inc() }
func DecWSConnections()   { wsConnections.Dec() }
func IncWSEventDropped()  { wsEventsDropped.Inc() }
