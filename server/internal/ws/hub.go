package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hookstream/hookstream/pkg/types"
	"github.com/hookstream/hookstream/server/internal/api"
	"github.com/hookstream/hookstream/server/internal/store"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// eventBufSize is the depth of the queue between Publish and Run.
	eventBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is the JSON envelope sent to clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub manages WebSocket client connections and pushes every published
// message to the clients subscribed to its stream.
type Hub struct {
	store  *store.Store
	events chan types.Message

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool // set by closeAll; no registrations after shutdown
}

// client represents one connected WebSocket client.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	stream string // empty = all streams
}

// New creates a Hub that serves the initial snapshot from st.
func New(st *store.Store) *Hub {
	return &Hub{
		store:   st,
		events:  make(chan types.Message, eventBufSize),
		clients: make(map[*client]struct{}),
	}
}

// Publish queues msg for broadcast. It never blocks; when the queue is full
// the message is dropped from the live feed (it is still in the store).
func (h *Hub) Publish(msg types.Message) {
	select {
	case h.events <- msg:
	default:
		slog.Warn("ws: event queue full, dropping live update", "message_id", msg.ID, "stream", msg.Stream)
	}
}

// Run broadcasts published messages until ctx is cancelled, then closes
// all active connections.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.events:
			h.broadcast(msg)
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends the current snapshot immediately on connect, then forwards each
// published message. The optional ?stream= parameter filters both.
// Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.isClosed() {
		http.Error(w, "hub is shutting down", http.StatusServiceUnavailable)
		return
	}

	stream := r.URL.Query().Get("stream")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBufSize),
		stream: stream,
	}
	// Queue the snapshot before registering; c.send is private until then.
	if data, err := h.snapshotEvent(stream); err == nil {
		c.send <- data
	}
	if !h.register(c) {
		// Shutdown won the race after the upgrade.
		conn.Close()
		return
	}
	defer h.unregister(c)

	go c.writePump()
	c.readPump() // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) isClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(msg types.Message) {
	data, err := json.Marshal(Event{Event: "message", Data: msg})
	if err != nil {
		return
	}

	// Sends happen under the read lock so unregister cannot close a
	// channel mid-send.
	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if c.stream != "" && c.stream != msg.Stream {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// Client's outgoing buffer is full; disconnect it.
	for _, c := range slow {
		h.unregister(c)
	}
}

func (h *Hub) snapshotEvent(stream string) ([]byte, error) {
	snap := api.BuildSnapshot(h.store)
	if stream != "" {
		msgs := snap.Messages[:0]
		for _, m := range snap.Messages {
			if m.Stream == stream {
				msgs = append(msgs, m)
			}
		}
		snap.Messages = msgs
	}
	return json.Marshal(Event{Event: "snapshot", Data: snap})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames from the connection to process control messages (pong,
// close) and detect disconnects. Blocks until the connection closes.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
