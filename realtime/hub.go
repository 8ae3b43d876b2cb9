// Package realtime pushes order lifecycle events to connected admin
// dashboards over WebSocket. Delivery is best-effort and at-most-once:
// a slow client's events are dropped once its send buffer fills, and a
// reconnecting client is expected to re-fetch current state.
package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/walthampeppinosdosa/peppinos-api/models"
)

// OrderEvent is what admin-room members receive on every status transition.
type OrderEvent struct {
	OrderID   uint               `json:"order_id"`
	OrderRef  string             `json:"order_ref"`
	Status    models.OrderStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

// Hub tracks connected clients and the subset that joined the admin room.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	adminRoom map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		adminRoom: make(map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		delete(h.adminRoom, c)
		close(c.send)
	}
}

func (h *Hub) joinAdminRoom(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		h.adminRoom[c] = true
	}
}

func (h *Hub) leaveAdminRoom(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.adminRoom, c)
}

// AdminRoomSize reports current admin-room membership.
func (h *Hub) AdminRoomSize() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.adminRoom)
}

// BroadcastOrderEvent sends the event to every admin-room member. Full send
// buffers and marshal failures are logged and dropped; there is no retry.
func (h *Hub) BroadcastOrderEvent(ev OrderEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("❌ Failed to encode order event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.adminRoom {
		select {
		case c.send <- data:
		default:
			log.Printf("⚠️ Dropping order event for slow admin client %s", c.userID)
		}
	}
}
