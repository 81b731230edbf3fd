package messaging

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is the frame exchanged over the live socket.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client is one live connection. Writes are serialized per connection;
// gorilla allows only one concurrent writer.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (cl *Client) send(payload []byte) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maps a user id to that user's channel: the set of all live connections
// registered for the user. Connects and disconnects race with broadcasts, so
// membership is guarded by a RWMutex.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*Client]bool)}
}

// Join registers a connection under the user's channel and returns the
// handle used to leave later. A user may hold any number of connections.
func (h *Hub) Join(userID string, conn *websocket.Conn) *Client {
	cl := &Client{conn: conn}
	h.mu.Lock()
	ch, ok := h.channels[userID]
	if !ok {
		ch = make(map[*Client]bool)
		h.channels[userID] = ch
	}
	ch[cl] = true
	h.mu.Unlock()
	return cl
}

// Leave removes one connection; the user stays reachable through any other
// live connection they hold.
func (h *Hub) Leave(userID string, cl *Client) {
	h.mu.Lock()
	if ch, ok := h.channels[userID]; ok {
		delete(ch, cl)
		if len(ch) == 0 {
			delete(h.channels, userID)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends the event to every live connection of the user. A user
// with no connections is a no-op: delivery is best effort, missed messages
// are pulled via history.
func (h *Hub) Broadcast(userID string, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.mu.RLock()
	members := make([]*Client, 0, len(h.channels[userID]))
	for cl := range h.channels[userID] {
		members = append(members, cl)
	}
	h.mu.RUnlock()
	for _, cl := range members {
		_ = cl.send(payload)
	}
}

// Connected reports whether the user currently holds at least one live
// connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[userID]) > 0
}
