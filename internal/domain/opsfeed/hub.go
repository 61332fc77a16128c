package opsfeed

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Connection is one subscribed operator dashboard.
type Connection struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub broadcasts operational events (reward run summaries) to every
// connected operator. One process, one room: reward batches run in-process,
// so there is no cross-instance fanout to do.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a new ops feed hub
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan []byte, 16),
		done:        make(chan struct{}),
	}
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			h.mu.Unlock()
			log.Debug().Int("connections", h.Count()).Msg("Operator connected to ops feed")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			log.Debug().Int("connections", h.Count()).Msg("Operator disconnected from ops feed")

		case data := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.connections {
				select {
				case conn.Send <- data:
				default:
					// Buffer full, drop for this subscriber
					log.Warn().Msg("Ops feed send buffer full")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection. A no-op once the hub is shut down; without
// the done guard the send would block forever with no Run loop draining it.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a connection. Same done guard as Register so reader
// goroutines of clients disconnecting during shutdown do not leak.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish fans an event out to every subscriber. Marshal failures and a
// stopped hub are swallowed; the feed is observational.
func (h *Hub) Publish(event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal ops feed event")
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Count returns the number of connected subscribers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Shutdown stops the hub
func (h *Hub) Shutdown() {
	close(h.done)
}
