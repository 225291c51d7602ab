package notifications

import (
	"sync"

	"atelier/internal/middleware"
	"atelier/internal/observability"
)

// maxConnsPerUser caps simultaneous sockets per account so one user cannot
// exhaust the hub.
const maxConnsPerUser = 5

// Hub tracks live WebSocket clients per user and fans messages out to them.
// Sends never block: a client that cannot keep up is disconnected.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*Client]struct{})}
}

// Register attaches a client. Returns false when the hub is shut down or
// the user hit the connection cap.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	conns := h.clients[c.userID]
	if len(conns) >= maxConnsPerUser {
		middleware.Logger.Warn("websocket connection cap reached", "user_id", c.userID)
		return false
	}
	if conns == nil {
		conns = make(map[*Client]struct{})
		h.clients[c.userID] = conns
	}
	conns[c] = struct{}{}
	observability.WebSocketConnectionsTotal.Inc()
	return true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
	observability.WebSocketConnectionsTotal.Dec()
	c.closeSend()
}

// SendToUser delivers msg to every live connection of the user. A full send
// buffer drops the connection rather than block the hub.
func (h *Hub) SendToUser(userID uint, msg []byte) {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.trySend(msg) {
			observability.WebSocketBackpressureDrops.WithLabelValues("slow_client").Inc()
			h.Unregister(c)
		}
	}
}

// Shutdown closes every client and refuses new registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	var all []*Client
	for _, conns := range h.clients {
		for c := range conns {
			all = append(all, c)
		}
	}
	h.clients = make(map[uint]map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range all {
		observability.WebSocketConnectionsTotal.Dec()
		c.closeSend()
	}
}
