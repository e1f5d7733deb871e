package signalling

import (
	"errors"
	"log/slog"
	"net"

	"github.com/mirrorcast/websignal/internal/metrics"
	"github.com/mirrorcast/websignal/internal/registry"
	"github.com/mirrorcast/websignal/internal/wsproto"
)

// readLoop drains frames from one upgraded connection and hands unmasked
// text payloads to the OnMessage handler verbatim. Transport and protocol
// failures both end in a disconnect, never in a crash; the loop exits when
// the client is removed from the registry for any reason.
func (s *Server) readLoop(id registry.ClientID, conn net.Conn) {
	defer s.registry.Remove(id)

	buf := make([]byte, s.recvBufferSize())
	filled := 0

	for {
		n, err := conn.Read(buf[filled:])
		if err != nil {
			if !s.stopped.Load() {
				slog.Info("client disconnected", "client", id, "reason", err)
			}
			return
		}
		filled += n
		metrics.BytesReceivedTotal.Add(float64(n))

		for {
			frame, consumed, err := wsproto.ParseFrame(buf[:filled])
			if errors.Is(err, wsproto.ErrIncompleteFrame) {
				if filled == len(buf) {
					// The frame can never fit the receive buffer.
					metrics.FramesRejectedTotal.Inc()
					slog.Warn("dropping client, frame exceeds receive buffer", "client", id)
					return
				}
				break
			}
			if err != nil {
				metrics.FramesRejectedTotal.Inc()
				slog.Warn("dropping client, malformed frame", "client", id, "err", err)
				return
			}
			metrics.FramesParsedTotal.Inc()

			copy(buf, buf[consumed:filled])
			filled -= consumed

			switch frame.Opcode {
			case wsproto.OpcodeClose:
				return
			case wsproto.OpcodePing, wsproto.OpcodePong:
				// Keepalive traffic carries no signalling payload.
				continue
			}

			if s.handlers.OnMessage != nil {
				s.handlers.OnMessage(id, frame.Payload)
			}
		}
	}
}

func (s *Server) recvBufferSize() int {
	if s.cfg.RecvBufferSize > 0 {
		return s.cfg.RecvBufferSize
	}
	return wsproto.MaxPayloadSize
}
