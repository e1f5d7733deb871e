package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "webrtc_signal_active_clients",
		Help: "Number of live signalling clients",
	})

	ClientsConnectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_clients_connected_total",
		Help: "Total number of clients that completed a WebSocket upgrade",
	})

	ClientsDisconnectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_clients_disconnected_total",
		Help: "Total number of client disconnects",
	})

	UpgradeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webrtc_signal_upgrade_failures_total",
		Help: "Total number of failed WebSocket upgrades",
	}, []string{"reason"}) // "full" | "handshake" | "io"

	PageServesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_page_serves_total",
		Help: "Total number of HTTP requests answered with the player page",
	})

	AcceptErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_accept_errors_total",
		Help: "Total number of accept failures on the listening socket",
	})

	FramesParsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_frames_parsed_total",
		Help: "Total number of inbound WebSocket frames parsed",
	})

	FramesRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_frames_rejected_total",
		Help: "Total number of inbound frames rejected as malformed or oversized",
	})

	FramesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_frames_sent_total",
		Help: "Total number of text frames written to clients",
	})

	BytesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_bytes_received_total",
		Help: "Total bytes read from client sockets",
	})

	BytesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_bytes_sent_total",
		Help: "Total bytes written to client sockets",
	})

	SinkPushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_sink_pushes_total",
		Help: "Total media frames pushed into the frame sink",
	})

	SinkDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_sink_drops_total",
		Help: "Total media frames that reached no connected peer",
	})

	ConfigReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webrtc_signal_config_reloads_total",
		Help: "Number of configuration reloads",
	})

	StartTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "webrtc_signal_start_time_seconds",
		Help: "Server start time in Unix seconds",
	})
)
