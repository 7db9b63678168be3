package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks currently open websocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections_active",
		Help: "Number of currently connected clients.",
	})

	// EventsTotal counts accepted inbound events by type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_events_total",
		Help: "Inbound events processed, by event type.",
	}, []string{"event"})

	// BroadcastsTotal counts per-recipient outbound emissions.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_broadcasts_total",
		Help: "Outbound room emissions, one per recipient.",
	})

	// HistoryErrors counts swallowed history store failures.
	HistoryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_history_errors_total",
		Help: "History store operations that failed and were skipped.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
