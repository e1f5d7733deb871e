// Package registry tracks connected signalling clients in a bounded,
// mutex-guarded table. Slots are allocated append-only: an id is the table
// index at registration time and stays stable for the connection lifetime.
package registry

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/mirrorcast/websignal/internal/media"
	"github.com/mirrorcast/websignal/internal/metrics"
)

// ErrFull is returned by Add once the table reached its capacity.
var ErrFull = errors.New("registry: client table full")

// ClientID is a small non-negative index into the registry table.
type ClientID int

// Handlers are the callbacks the media engine supplies at construction.
// Any of them may be nil. OnDisconnected fires exactly once per client and
// never while the registry lock is held.
type Handlers struct {
	OnConnected    func(id ClientID)
	OnDisconnected func(id ClientID)
	OnMessage      func(id ClientID, payload []byte)
	OnError        func(msg string)
}

// Client is one registered signalling peer. The transport handle is valid
// exactly while the alive flag is set.
type Client struct {
	id    ClientID
	conn  net.Conn
	alive atomic.Bool

	// peer is an engine-owned handle, guarded by the registry mutex.
	// The registry only clears its reference; releasing the handle is
	// the engine's job.
	peer media.PeerHandle
}

func (c *Client) ID() ClientID   { return c.id }
func (c *Client) Conn() net.Conn { return c.conn }
func (c *Client) Alive() bool    { return c.alive.Load() }

func (c *Client) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// ClientInfo is a point-in-time view of one slot, safe to hand out.
type ClientInfo struct {
	ID         ClientID `json:"id"`
	RemoteAddr string   `json:"remoteAddr"`
	Alive      bool     `json:"alive"`
	HasPeer    bool     `json:"hasPeer"`
}

// Registry is the fixed-capacity client table. Once capacity clients have
// ever been registered no further client can join, even after disconnects;
// the count is the high-water mark of issued ids.
type Registry struct {
	mu       sync.Mutex
	clients  []*Client
	capacity int
	handlers Handlers
}

func New(capacity int, handlers Handlers) *Registry {
	return &Registry{
		clients:  make([]*Client, 0, capacity),
		capacity: capacity,
		handlers: handlers,
	}
}

// Add registers conn and returns the new client id, which equals the table
// count before the append. Fails with ErrFull at capacity; the caller keeps
// ownership of conn in that case.
func (r *Registry) Add(conn net.Conn) (ClientID, error) {
	r.mu.Lock()
	if len(r.clients) >= r.capacity {
		r.mu.Unlock()
		return 0, ErrFull
	}

	client := &Client{id: ClientID(len(r.clients)), conn: conn}
	client.alive.Store(true)
	r.clients = append(r.clients, client)
	r.mu.Unlock()

	metrics.ActiveClients.Inc()
	metrics.ClientsConnectedTotal.Inc()
	return client.id, nil
}

// Remove marks the client not-alive, closes its transport and clears the
// peer handle reference. A second call for the same id is a no-op. The
// disconnect callback runs after the lock is released.
func (r *Registry) Remove(id ClientID) {
	r.mu.Lock()
	client := r.lookup(id)
	if client == nil || !client.alive.CompareAndSwap(true, false) {
		r.mu.Unlock()
		return
	}
	_ = client.conn.Close()
	client.peer = nil
	r.mu.Unlock()

	metrics.ActiveClients.Dec()
	metrics.ClientsDisconnectedTotal.Inc()
	if r.handlers.OnDisconnected != nil {
		r.handlers.OnDisconnected(id)
	}
}

// Get returns the client for id. Ids never allocated return false.
func (r *Registry) Get(id ClientID) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client := r.lookup(id)
	return client, client != nil
}

// AttachPeer stores the engine's peer handle on a live client.
func (r *Registry) AttachPeer(id ClientID, handle media.PeerHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	client := r.lookup(id)
	if client == nil || !client.alive.Load() {
		return false
	}
	client.peer = handle
	return true
}

// Count returns the number of slots ever allocated.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// ForEachAlive runs fn under the lock for every live client. fn must not
// re-enter the registry.
func (r *Registry) ForEachAlive(fn func(id ClientID, conn net.Conn, peer media.PeerHandle)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, client := range r.clients {
		if client.alive.Load() {
			fn(client.id, client.conn, client.peer)
		}
	}
}

// CloseAll disconnects every live client. Used on server stop.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	var removed []ClientID
	for _, client := range r.clients {
		if client.alive.CompareAndSwap(true, false) {
			_ = client.conn.Close()
			client.peer = nil
			removed = append(removed, client.id)
		}
	}
	r.mu.Unlock()

	for _, id := range removed {
		metrics.ActiveClients.Dec()
		metrics.ClientsDisconnectedTotal.Inc()
		if r.handlers.OnDisconnected != nil {
			r.handlers.OnDisconnected(id)
		}
	}
}

// Snapshot returns a copy of the table state for the ops surface.
func (r *Registry) Snapshot() []ClientInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]ClientInfo, 0, len(r.clients))
	for _, client := range r.clients {
		infos = append(infos, ClientInfo{
			ID:         client.id,
			RemoteAddr: client.RemoteAddr(),
			Alive:      client.alive.Load(),
			HasPeer:    client.peer != nil,
		})
	}
	return infos
}

// lookup must be called with the lock held.
func (r *Registry) lookup(id ClientID) *Client {
	if id < 0 || int(id) >= len(r.clients) {
		return nil
	}
	return r.clients[id]
}
