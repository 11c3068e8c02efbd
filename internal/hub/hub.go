package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-events/internal/config"
	"github.com/weiawesome/wes-events/pkg/log"
)

// Hub is the registry of open live-update connections. It is created at
// server start and stopped at shutdown.
type Hub struct {
	clients map[string]*Client // clientID -> client
	mu      sync.RWMutex
	config  config.WebSocketConfig
	logger  zerolog.Logger
	stopped bool
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		config:  cfg,
		logger:  log.L(),
	}
}

// Register adds a client. Registering after Stop closes the client
// immediately.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		client.closeSend()
		return
	}
	h.clients[client.ID] = client
	size := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str(log.FieldConnectionID, client.ID).
		Int("connections", size).
		Msg("connection registered")
}

// Unregister removes a client and closes its send queue. Unknown or already
// removed clients are ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.ID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	client.closeSend()
	size := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str(log.FieldConnectionID, client.ID).
		Int("connections", size).
		Msg("connection unregistered")
}

// BroadcastAll queues message on every registered client and returns how
// many accepted it. Clients whose queue is full are skipped. A client's queue
// is only closed under the write lock, so every client seen here is open.
func (h *Hub) BroadcastAll(message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, client := range h.clients {
		select {
		case client.Send <- message:
			delivered++
		default:
			h.logger.Warn().Str(log.FieldConnectionID, id).Msg("delivery skipped: send queue full")
		}
	}
	return delivered
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop unregisters every client. Write pumps observe the closed queue and
// send a close frame.
func (h *Hub) Stop() {
	h.mu.Lock()
	h.stopped = true
	clients := h.clients
	h.clients = make(map[string]*Client)
	for _, client := range clients {
		client.closeSend()
	}
	h.mu.Unlock()

	h.logger.Info().Int("connections", len(clients)).Msg("hub stopped")
}
