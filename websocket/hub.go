// Package websocket pushes catalog change notices to open portal pages.
// file: websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"school-activities/logger"
)

// ActionCatalogUpdated tells pages to reload their activity list.
const ActionCatalogUpdated = "catalogUpdated"

// Kinds of catalog change.
const (
	ChangeSignup     = "signup"
	ChangeUnregister = "unregister"
)

const broadcastBuffer = 64

// CatalogUpdate is the message sent after a successful signup or unregister.
// Origin is the client id of the page that caused the change, so it can skip the echo.
type CatalogUpdate struct {
	Action   string `json:"action"`
	Activity string `json:"activity"`
	Change   string `json:"change"`
	Origin   string `json:"origin,omitempty"`
}

// ClientCounter receives the number of connected pages.
type ClientCounter interface {
	LiveClients(n int)
}

// Hub tracks live connections and fans broadcast messages out to them.
type Hub struct {
	mu          sync.Mutex
	connections map[*Connection]struct{}
	broadcast   chan []byte
	counter     ClientCounter
	upgrader    websocket.Upgrader
}

// NewHub creates a hub. counter may be nil.
func NewHub(counter ClientCounter) *Hub {
	return &Hub{
		connections: make(map[*Connection]struct{}),
		broadcast:   make(chan []byte, broadcastBuffer),
		counter:     counter,
	}
}

// Run distributes broadcast messages until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case msg := <-h.broadcast:
			h.fanOut(msg)
		case <-ctx.Done():
			h.closeAll()
			logger.Info.Println("Hub.Run: Stopped")
			return
		}
	}
}

// NotifyCatalogChanged queues a catalogUpdated message for every connected page.
func (h *Hub) NotifyCatalogChanged(activity, change, origin string) {
	msg, err := json.Marshal(CatalogUpdate{
		Action:   ActionCatalogUpdated,
		Activity: activity,
		Change:   change,
		Origin:   origin,
	})
	if err != nil {
		logger.Error.Printf("NotifyCatalogChanged: Error marshalling update: %v", err)
		return
	}

	select {
	case h.broadcast <- msg:
		logger.Debug.Printf("NotifyCatalogChanged: Queued %s of %q", change, activity)
	default:
		logger.Warn.Printf("NotifyCatalogChanged: Broadcast queue full, dropping %s of %q", change, activity)
	}
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// ServeWs upgrades the request and starts the connection's pumps.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logger.Warn.Printf("ServeWs: WebSocket upgrade error from %v: %v", r.RemoteAddr, err)
		return
	}
	logger.Info.Printf("ServeWs: Live client connected: remoteAddr=%v", r.RemoteAddr)

	c := newConnection(h, wsConn)
	h.register(c)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.connections[c] = struct{}{}
	n := len(h.connections)
	h.mu.Unlock()
	h.reportCount(n)
}

// unregister removes c and closes its send channel. Safe to call more than once.
func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, c)
	close(c.send)
	n := len(h.connections)
	h.mu.Unlock()
	h.reportCount(n)
}

func (h *Hub) fanOut(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		select {
		case c.send <- msg:
		default:
			logger.Warn.Printf("Hub.fanOut: Dropping message for slow connection %v", c.conn.RemoteAddr())
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.connections {
		delete(h.connections, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.reportCount(0)
}

func (h *Hub) reportCount(n int) {
	if h.counter != nil {
		h.counter.LiveClients(n)
	}
}
