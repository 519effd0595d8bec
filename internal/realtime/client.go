// Package realtime owns the live websocket connections and the fan-out of
// notifications to them. The Hub's per-user connection set is the only shared
// mutable structure in the process; connections are registered on successful
// handshake and torn down promptly on transport close.
package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum inbound message size. Clients only send pings/acks.
	maxMessageSize = 512
	// Per-connection outgoing buffer. Frames beyond this are dropped for the
	// slow connection only.
	sendBufferSize = 32
)

// Client is one live connection of one user. A user may hold several (tabs,
// devices); each gets its own Client and its own buffered send queue, written
// by a single goroutine so delivery order per connection matches dispatch order.
type Client struct {
	id     string
	userID uint
	conn   *websocket.Conn

	send      chan []byte
	closeOnce sync.Once
}

func newClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// UserID returns the identity verified at handshake time.
func (c *Client) UserID() uint { return c.userID }

// close shuts the send queue exactly once. Called by the hub while it holds
// its lock, so no SendToUser can be writing into the channel concurrently.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings. It exits when the queue is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("realtime: write to connection %s of user %d failed: %v", c.id, c.userID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes (and discards) inbound frames so close and pong control
// messages are processed. When the transport dies the connection is
// unregistered immediately rather than on the next send attempt.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
