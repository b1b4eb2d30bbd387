package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"vn.io.terango/notifier/internal/domain"
)

// Client represents one connected dashboard SSE stream.
type Client struct {
	send chan []byte
}

// Hub manages the dashboard SSE streams for this notifier instance. The
// process serves exactly one room (admin-global or one vendor), so every
// connected client receives every frame. It implements effects.Broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds a new SSE client.
func (h *Hub) Register(send chan []byte) *Client {
	c := &Client{send: send}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	log.Debug().Msg("SSE client connected")
	return c
}

// Unregister removes an SSE client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	log.Debug().Msg("SSE client disconnected")
}

// Toast pushes a transient toast to every connected dashboard.
func (h *Hub) Toast(_ context.Context, text string) {
	payload, _ := json.Marshal(map[string]string{"message": text})
	h.broadcast(frame("toast", payload))
}

// Notification pushes a new feed entry to every connected dashboard.
func (h *Hub) Notification(_ context.Context, n domain.AppNotification) {
	payload, _ := json.Marshal(n)
	h.broadcast(frame("notification", payload))
}

// ConnectedCount returns the number of connected SSE clients.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Client is slow/disconnected, skip
			log.Warn().Msg("SSE client send buffer full, skipping")
		}
	}
}

// frame formats an SSE frame: "event: <name>\ndata: <json>\n\n".
func frame(event string, data []byte) []byte {
	return []byte("event: " + event + "\ndata: " + string(data) + "\n\n")
}
