package websocket

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Central hub fanning host events out to every subscriber.
// Each WebSocket connection runs in its own goroutines
// but they all talk to the hub through channels, so the client set is only
// touched by Run.
type Hub struct {
	clients map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	count  atomic.Int64
	done   chan struct{}
	logger *slog.Logger
}

// constructor new hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client set until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			h.logger.Info("ws_hub_stopped")
			return

		case client := <-h.Register:
			h.clients[client] = true
			h.count.Add(1)
			h.logger.Info("ws_client_connected", "client_id", client.ID, "clients", len(h.clients))

		case client := <-h.Unregister:
			if h.clients[client] {
				h.remove(client)
				h.logger.Info("ws_client_disconnected", "client_id", client.ID, "clients", len(h.clients))
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.SendChannel <- message:
				default:
					// slow consumer, its buffer is full
					h.remove(client)
					h.logger.Warn("ws_client_dropped", "client_id", client.ID)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.SendChannel)
	h.count.Add(-1)
}

// Add registers client unless the hub has stopped.
func (h *Hub) Add(client *Client) bool {
	if h.stopped() {
		return false
	}
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Remove unregisters client; it is a no-op once the hub has stopped.
func (h *Hub) Remove(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Publish queues message for every client. It returns false once the hub has
// stopped.
func (h *Hub) Publish(message []byte) bool {
	// Broadcast is buffered, so after Run returns a send could still succeed
	if h.stopped() {
		return false
	}
	select {
	case h.Broadcast <- message:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ClientCount is the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
