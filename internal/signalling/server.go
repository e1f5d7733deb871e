// Package signalling implements the signalling endpoint: a TCP accept loop
// that serves the embedded player page over plain HTTP or upgrades the
// connection to WebSocket and registers it as a signalling client.
//
// The server relays signalling payloads (session descriptions, ICE
// candidates) between the media engine and browser peers; it never
// interprets them. Media negotiation and encoding live behind the
// media.Sink and media.PeerTransport interfaces.
package signalling

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mirrorcast/websignal/internal/config"
	"github.com/mirrorcast/websignal/internal/media"
	"github.com/mirrorcast/websignal/internal/metrics"
	"github.com/mirrorcast/websignal/internal/registry"
	"github.com/mirrorcast/websignal/internal/wsproto"
)

// defaultMaxClients bounds the registry when the configuration does not.
const defaultMaxClients = 10

// Server owns the listening socket, the client registry and the accept
// goroutine. Lifecycle: NewServer binds, Start spawns the accept loop,
// Stop disconnects everything and unblocks the loop, Wait joins it.
// Each is called once, in that order; Close is Stop followed by Wait.
type Server struct {
	cfg      config.ServerConfig
	registry *registry.Registry
	handlers registry.Handlers

	ln      net.Listener
	stopped atomic.Bool
	done    chan struct{}

	// transport is the media engine's encode-and-send step, optional.
	transport media.PeerTransport
}

// Option adjusts server construction.
type Option func(*Server)

// WithListener injects a pre-bound listener instead of binding
// cfg.Host:cfg.Port. The server takes ownership.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.ln = ln }
}

// WithPeerTransport wires the media engine's frame hand-off used by the
// frame sink. Without it, pushed frames are counted and dropped.
func WithPeerTransport(t media.PeerTransport) Option {
	return func(s *Server) { s.transport = t }
}

// NewServer binds the listening socket and prepares the registry. On error
// nothing stays allocated. handlers are the media engine callbacks; any may
// be nil.
func NewServer(cfg config.ServerConfig, handlers registry.Handlers, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		handlers: handlers,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ln == nil {
		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("signalling: listen on %s: %w", addr, err)
		}
		s.ln = ln
	}

	capacity := cfg.MaxClients
	if capacity <= 0 {
		capacity = defaultMaxClients
	}
	s.registry = registry.New(capacity, handlers)

	metrics.StartTime.Set(float64(time.Now().Unix()))
	slog.Info("signalling server initialized", "addr", s.ln.Addr())
	return s, nil
}

// Start spawns the accept loop.
func (s *Server) Start() {
	go s.acceptLoop()
	slog.Info("signalling server started", "addr", s.ln.Addr())
}

// Stop sets the stop flag, disconnects every live client and closes the
// listening socket to unblock a blocked Accept.
func (s *Server) Stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	s.registry.CloseAll()
	if err := s.ln.Close(); err != nil {
		slog.Error("error closing listener", "err", err)
	}
}

// Wait blocks until the accept loop has observed the closed listener and
// returned.
func (s *Server) Wait() {
	<-s.done
}

// Close stops the server and waits for the accept loop to finish.
func (s *Server) Close() {
	s.Stop()
	s.Wait()
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Registry exposes the client table for the ops surface.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

func (s *Server) acceptLoop() {
	defer close(s.done)

	for !s.stopped.Load() {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.stopped.Load() {
				break
			}
			metrics.AcceptErrorsTotal.Inc()
			s.reportError(fmt.Sprintf("failed to accept connection: %v", err))
			continue
		}

		// One connection at a time; negotiation is a single bounded
		// read so a handshake cannot stall the loop for long unless
		// the peer trickles.
		if !s.handleConn(conn) {
			_ = conn.Close()
		}
	}

	slog.Info("signalling accept loop stopped")
}

// Send builds a text frame around payload and writes it to the client.
func (s *Server) Send(id registry.ClientID, payload []byte) error {
	client, ok := s.registry.Get(id)
	if !ok || !client.Alive() {
		return fmt.Errorf("signalling: client %d not connected", id)
	}

	frame := wsproto.BuildTextFrame(payload)
	n, err := client.Conn().Write(frame)
	metrics.BytesSentTotal.Add(float64(n))
	if err != nil {
		s.registry.Remove(id)
		return fmt.Errorf("signalling: send to client %d: %w", id, err)
	}
	metrics.FramesSentTotal.Inc()
	return nil
}

// Broadcast sends payload to every live client. Write failures disconnect
// the affected client and do not stop the fan-out.
func (s *Server) Broadcast(payload []byte) {
	var ids []registry.ClientID
	s.registry.ForEachAlive(func(id registry.ClientID, _ net.Conn, _ media.PeerHandle) {
		ids = append(ids, id)
	})

	for _, id := range ids {
		if err := s.Send(id, payload); err != nil {
			slog.Warn("broadcast send failed", "client", id, "err", err)
		}
	}
}

func (s *Server) reportError(msg string) {
	slog.Warn(msg)
	if s.handlers.OnError != nil {
		s.handlers.OnError(msg)
	}
}
