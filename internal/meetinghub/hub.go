package meetinghub

import (
	"sync"

	"confusense/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Hub is the directory of live connections, keyed by connection id.
// Delivery never blocks: a frame a client cannot take is dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]Client)}
}

// Register adds or replaces the client under its connection id.
func (h *Hub) Register(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.GetConnID()] = c
}

// Unregister removes the client and returns it so the caller can close it.
func (h *Hub) Unregister(connID string) (Client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if ok {
		delete(h.clients, connID)
	}
	return c, ok
}

// ClientCount is the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendTo delivers one frame to one connection. It reports whether the frame was queued.
func (h *Hub) SendTo(connID string, msg models.OutboundMessage) bool {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	if err := c.Send(msg); err != nil {
		log.Warn().Err(err).Str("module", "meetinghub.hub").Str("sid", connID).Str("event", msg.Event).Msg("frame dropped")
		return false
	}
	return true
}

// Deliver sends the frame to every listed connection and returns how many accepted it.
func (h *Hub) Deliver(connIDs []string, msg models.OutboundMessage) int {
	delivered := 0
	for _, id := range connIDs {
		if h.SendTo(id, msg) {
			delivered++
		}
	}
	return delivered
}

// CloseAll unregisters and closes every client. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
