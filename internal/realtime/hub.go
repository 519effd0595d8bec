package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub is the connection registry: it maps a user ID to the set of that user's
// live connections and fans payloads out to them. All bucket mutation and
// sending happens under the hub's lock, so an unregister can never race a send
// into a half-torn-down connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[string]*Client
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[string]*Client)}
}

// Register adds the connection under its user's bucket.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	bucket, ok := h.clients[c.userID]
	if !ok {
		bucket = make(map[string]*Client)
		h.clients[c.userID] = bucket
	}
	bucket[c.id] = c
}

// Unregister removes the connection from its bucket and closes its send
// queue. Calling it for an already-removed connection is a no-op, which
// absorbs double-disconnect races.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	bucket, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := bucket[c.id]; !ok {
		return
	}
	delete(bucket, c.id)
	if len(bucket) == 0 {
		delete(h.clients, c.userID)
	}
	c.close()
}

// SendToUser delivers the payload to every live connection of the user.
// No connections is a silent no-op: the durable notification row is the source
// of truth and will surface on the next poll. A full buffer on one slow
// connection drops the frame for that connection only and never blocks the
// caller or the user's other connections.
func (h *Hub) SendToUser(userID uint, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("realtime: marshal payload for user %d failed: %v", userID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			log.Printf("realtime: dropping frame for slow connection %s of user %d", c.id, userID)
		}
	}
}

// Connections returns how many live connections the user currently has.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
