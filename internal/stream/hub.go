// Package stream publishes simulation frames to browser clients over
// websockets and feeds their control messages back into the host loop.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Handler receives decoded client messages. It runs on the connection's read
// goroutine.
type Handler func(Message)

// Hub tracks connected clients and fans frames out to them.
type Hub struct {
	upgrader websocket.Upgrader
	handler  Handler

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    *websocket.PreparedMessage
}

// NewHub returns a hub that passes client messages to handler. A nil handler
// drops them.
func NewHub(handler Handler) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		handler: handler,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the connection until the client
// goes away. A newly connected client immediately receives the latest frame.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("stream: upgrade:", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = connMu
	last := h.last
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	if last != nil {
		connMu.Lock()
		err := conn.WritePreparedMessage(last)
		connMu.Unlock()
		if err != nil {
			return
		}
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Println("stream: read:", err)
			}
			return
		}
		if h.handler != nil {
			h.handler(msg)
		}
	}
}

// Broadcast encodes v once and writes it to every client. Clients whose write
// fails are dropped.
func (h *Hub) Broadcast(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pm, err := websocket.NewPreparedMessage(websocket.TextMessage, payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.last = pm
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, connMu := range h.clients {
		targets[conn] = connMu
	}
	h.mu.Unlock()

	var failed []*websocket.Conn
	for conn, connMu := range targets {
		connMu.Lock()
		err := conn.WritePreparedMessage(pm)
		connMu.Unlock()
		if err != nil {
			failed = append(failed, conn)
		}
	}
	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
	}
	return nil
}
