package signalling

import (
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/mirrorcast/websignal/internal/metrics"
	"github.com/mirrorcast/websignal/internal/wsproto"
)

// requestBufferSize bounds the single read the negotiator performs on a
// fresh connection. Requests that do not arrive whole in one read are not
// supported.
const requestBufferSize = 4096

// handleConn reads one HTTP request from a freshly accepted connection and
// either serves the player page or upgrades to WebSocket. The return value
// reports whether the connection was taken care of; on false the caller
// closes it. On a successful upgrade socket ownership moves to the
// registered client.
func (s *Server) handleConn(conn net.Conn) bool {
	buf := make([]byte, requestBufferSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return false
	}
	metrics.BytesReceivedTotal.Add(float64(n))

	request := string(buf[:n])
	if strings.Contains(strings.ToLower(headerValue(request, "Upgrade")), "websocket") {
		return s.handleUpgrade(conn, request)
	}

	s.servePage(conn)
	return true
}

// handleUpgrade performs the WebSocket handshake and registers the client.
// The accept token is computed per request from the client's key; a request
// without a key is rejected with 400.
func (s *Server) handleUpgrade(conn net.Conn, request string) bool {
	clientKey := headerValue(request, "Sec-WebSocket-Key")
	if clientKey == "" {
		metrics.UpgradeFailuresTotal.WithLabelValues("handshake").Inc()
		_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\nContent-Length: 0\r\n\r\n"))
		return false
	}

	response := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + wsproto.AcceptKey(clientKey) + "\r\n" +
		"\r\n"
	if _, err := conn.Write([]byte(response)); err != nil {
		metrics.UpgradeFailuresTotal.WithLabelValues("io").Inc()
		return false
	}

	id, err := s.registry.Add(conn)
	if err != nil {
		metrics.UpgradeFailuresTotal.WithLabelValues("full").Inc()
		slog.Warn("rejecting upgrade, client table full", "remoteAddr", conn.RemoteAddr())
		return false
	}

	slog.Info("client connected", "client", id, "remoteAddr", conn.RemoteAddr())
	if s.handlers.OnConnected != nil {
		s.handlers.OnConnected(id)
	}

	go s.readLoop(id, conn)
	return true
}

// servePage answers any non-upgrade request with the embedded player page.
// No routing on path or method; CORS is wide open.
func (s *Server) servePage(conn net.Conn) {
	defer conn.Close()

	response := fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"Content-Type: text/html\r\n"+
		"Access-Control-Allow-Origin: *\r\n"+
		"Access-Control-Allow-Methods: GET, POST, OPTIONS\r\n"+
		"Access-Control-Allow-Headers: Content-Type\r\n"+
		"Content-Length: %d\r\n"+
		"\r\n%s", len(playerPage), playerPage)

	n, err := conn.Write([]byte(response))
	metrics.BytesSentTotal.Add(float64(n))
	if err != nil {
		slog.Warn("failed to serve player page", "err", err)
		return
	}
	metrics.PageServesTotal.Inc()
}

// headerValue extracts a header value from a raw HTTP request. Header names
// compare case-insensitively; the first match wins.
func headerValue(request, name string) string {
	for _, line := range strings.Split(request, "\r\n") {
		if line == "" {
			break // end of headers
		}
		key, value, found := strings.Cut(line, ":")
		if found && strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
