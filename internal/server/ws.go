// Package server provides the HTTP server for the string piano.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler broadcasts per-frame state updates to WebSocket clients.
// Publish never blocks the frame loop: the update buffer holds the latest
// frame and older undelivered frames are dropped.
type StateHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	updates chan interface{}
}

// NewStateHandler creates a StateHandler and starts its broadcast loop.
func NewStateHandler() *StateHandler {
	h := &StateHandler{
		clients: make(map[*websocket.Conn]bool),
		updates: make(chan interface{}, 1),
	}
	go h.broadcast()
	return h
}

// Publish queues an update for broadcast, displacing an undelivered older
// one rather than blocking the caller.
func (h *StateHandler) Publish(v interface{}) {
	for {
		select {
		case h.updates <- v:
			return
		default:
			select {
			case <-h.updates:
			default:
			}
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast delivers queued updates to all connected clients.
func (h *StateHandler) broadcast() {
	for v := range h.updates {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		msg, err := json.Marshal(v)
		if err != nil {
			log.Printf("marshal state update: %v", err)
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}

// ClientCount returns the number of connected clients.
func (h *StateHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
