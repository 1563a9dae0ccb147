package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/fistjump/internal/feed"
)

// broadcastInterval paces websocket pushes (~15 per second).
const broadcastInterval = 66 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler pushes game snapshots to websocket clients.
type StateHandler struct {
	feed    *feed.Feed
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewStateHandler creates a handler reading from f. Nothing is sent until
// Broadcast runs.
func NewStateHandler(f *feed.Feed) *StateHandler {
	return &StateHandler{
		feed:    f,
		clients: make(map[*websocket.Conn]bool),
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

// Clients returns the number of connected clients.
func (h *StateHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends each new snapshot to all clients until ctx is done.
func (h *StateHandler) Broadcast(ctx context.Context) {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		snap, seq := h.feed.Latest()
		if seq == 0 || seq == lastSeq {
			continue
		}
		lastSeq = seq

		msg, err := json.Marshal(snap)
		if err != nil {
			log.Printf("failed to encode snapshot: %v", err)
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}
