package application

import (
	"context"
	"sync"

	"ecommerce/internal/pkg/logger"

	"github.com/gorilla/websocket"
)

const sendBuffer = 256

// Client is the send side of one websocket connection. All writes to the
// underlying conn go through the send channel and WritePump, which keeps a
// single writer per connection.
type Client struct {
	userID int64
	conn   *websocket.Conn
	send   chan any
}

// WritePump drains the send channel onto the connection. It is the only
// goroutine allowed to write to conn; it exits when the hub closes the
// channel or the write fails.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteJSON(payload); err != nil {
			return
		}
	}
}

// Hub tracks the websocket connections of signed-in users. A user may have
// several tabs open; every connection gets the push.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

// Register wraps the connection in a Client. The caller owns starting
// WritePump and deregistering when the read side ends.
func (h *Hub) Register(userID int64, conn *websocket.Conn) *Client {
	client := &Client{userID: userID, conn: conn, send: make(chan any, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	return client
}

// Unregister removes the client and closes its send channel, which stops its
// WritePump. Closing happens under the write lock so no Push can be sending
// on the channel at that moment.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, registered := set[client]; !registered {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.send)
}

// Push queues payload for every connection of the user. A client whose send
// buffer is full is lagging too far behind and the message is dropped for it.
func (h *Hub) Push(ctx context.Context, userID int64, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			logger.Ctx(ctx).Debug().
				Int64("user_id", userID).
				Msg("slow websocket client, notification dropped")
		}
	}
}

// Online reports whether the user has at least one live connection.
func (h *Hub) Online(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
