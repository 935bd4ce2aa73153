// Package stream serves simulation snapshots to websocket clients.
package stream

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types exchanged with clients.
const (
	TypeHello    = "hello"
	TypeSnapshot = "snapshot"
	TypePause    = "pause"
	TypeResume   = "resume"
	TypeStep     = "step"
)

const writeWait = 2 * time.Second

// Envelope wraps every outgoing message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Command is a control request received from a client.
type Command struct {
	Type string `json:"type"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub tracks connected clients and fans snapshots out to them.
// Broadcast may be called from any goroutine.
type Hub struct {
	upgrader websocket.Upgrader
	hello    any

	mu      sync.Mutex
	clients map[*client]struct{}

	commands chan Command
}

// NewHub creates a hub. hello is sent to each client on connect.
func NewHub(hello any) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		hello:    hello,
		clients:  make(map[*client]struct{}),
		commands: make(chan Command, 16),
	}
}

// Commands delivers pause, resume and step requests from clients.
// Requests are dropped if the channel is full.
func (h *Hub) Commands() <-chan Command {
	return h.commands
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends v to every client as a snapshot message. Clients that fail
// to receive it are disconnected.
func (h *Hub) Broadcast(v any) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	msg := Envelope{Type: TypeSnapshot, Data: v}
	for _, c := range list {
		if err := c.send(msg); err != nil {
			slog.Warn("stream client send failed", "remote", c.conn.RemoteAddr().String(), "error", err)
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// ServeHTTP upgrades the request and reads commands until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	if h.hello != nil {
		if err := c.send(Envelope{Type: TypeHello, Data: h.hello}); err != nil {
			conn.Close()
			return
		}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("stream client connected", "remote", conn.RemoteAddr().String())

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			break
		}
		switch cmd.Type {
		case TypePause, TypeResume, TypeStep:
			select {
			case h.commands <- cmd:
			default:
			}
		default:
			slog.Debug("ignoring stream command", "type", cmd.Type)
		}
	}

	h.remove(c)
	slog.Info("stream client disconnected", "remote", conn.RemoteAddr().String())
}

// Handler returns a mux serving the hub at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return mux
}
