package signalling

import (
	"log/slog"
	"net"

	"github.com/mirrorcast/websignal/internal/media"
	"github.com/mirrorcast/websignal/internal/metrics"
	"github.com/mirrorcast/websignal/internal/registry"
)

// frameSink adapts the server to the media.Sink contract. The media engine
// opens it once, pushes decoded frames, and closes it on stream teardown.
type frameSink struct {
	server *Server
}

// FrameSink returns the sink the media engine pushes decoded frames into.
func (s *Server) FrameSink() media.Sink {
	return &frameSink{server: s}
}

func (f *frameSink) Open(ctx media.CodecContext) error {
	slog.Debug("frame sink opened", "mimeType", ctx.MimeType, "width", ctx.Width, "height", ctx.Height)
	return nil
}

// Push fans the frame out to every live client that negotiated a peer
// connection. Handles are collected under the registry lock; a client that
// goes not-alive afterwards is simply no longer written to by the engine.
func (f *frameSink) Push(frame media.Frame) error {
	metrics.SinkPushesTotal.Inc()

	var handles []media.PeerHandle
	f.server.registry.ForEachAlive(func(_ registry.ClientID, _ net.Conn, peer media.PeerHandle) {
		if peer != nil {
			handles = append(handles, peer)
		}
	})

	if len(handles) == 0 || f.server.transport == nil {
		metrics.SinkDropsTotal.Inc()
		return nil
	}

	for _, handle := range handles {
		if err := f.server.transport.SendFrame(handle, frame); err != nil {
			slog.Warn("peer transport rejected frame", "err", err)
		}
	}
	return nil
}

func (f *frameSink) Close() {
	slog.Debug("frame sink closed")
}
