package notification

import "sync"

// Conn is the subset of a live push connection the hub needs. Satisfied by
// *websocket.Conn.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Hub is the registry of live push connections, keyed by account id. It is
// the only cross-request shared mutable structure in the process; entries are
// added on connect and removed on disconnect, and delivery is best-effort
// at-most-once. The persisted notification record is the durable fallback.
type Hub struct {
	mu    sync.RWMutex
	conns map[string][]Conn
}

// NewHub builds an empty connection registry.
func NewHub() *Hub {
	return &Hub{conns: make(map[string][]Conn)}
}

// Add registers a connection for the account.
func (h *Hub) Add(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], c)
}

// Remove drops a connection for the account.
func (h *Hub) Remove(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.conns[userID]
	for i, existing := range conns {
		if existing == c {
			h.conns[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Connected reports whether the account has at least one live connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

// Push writes the payload to every live connection of the account. Failed
// connections are dropped from the registry; there is no queuing or
// redelivery.
func (h *Hub) Push(userID string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.conns[userID]
	alive := conns[:0]
	for _, c := range conns {
		if err := c.WriteJSON(payload); err != nil {
			c.Close()
			continue
		}
		alive = append(alive, c)
	}
	if len(alive) == 0 {
		delete(h.conns, userID)
		return
	}
	h.conns[userID] = alive
}

// Close tears down every registered connection. Called on process shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.conns {
		for _, c := range conns {
			c.Close()
		}
	}
	h.conns = make(map[string][]Conn)
}
