package web

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Frames queued per client before it is dropped as too slow.
	sendBuffer = 16
)

// Encoding selects the wire format of a client's frames.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMsgpack
)

// ParseEncoding maps the ?encoding= query value; empty means JSON.
func ParseEncoding(s string) (Encoding, bool) {
	switch s {
	case "", "json":
		return EncodingJSON, true
	case "msgpack":
		return EncodingMsgpack, true
	}
	return EncodingJSON, false
}

// messageType is the websocket frame type used for the encoding.
func (e Encoding) messageType() int {
	if e == EncodingMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Encode serializes a frame.
func (e Encoding) Encode(f Frame) ([]byte, error) {
	if e == EncodingMsgpack {
		return msgpack.Marshal(&f)
	}
	return json.Marshal(f)
}

// client is one websocket subscriber.
type client struct {
	hub      *Hub
	conn     *websocket.Conn
	encoding Encoding
	send     chan []byte
}

// Hub maintains the set of active clients and broadcasts frames to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan Frame
	register   chan *client
	unregister chan *client
	count      chan chan int
	done       chan struct{}
	logger     *log.Logger
}

// NewHub initializes a new websocket hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan Frame),
		register:   make(chan *client),
		unregister: make(chan *client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.logger.Info("websocket hub shutting down")
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Debug("feed client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("feed client disconnected", "clients", len(h.clients))
			}

		case f := <-h.broadcast:
			h.fanOut(f)

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// fanOut encodes f once per encoding in use and queues it for every client.
func (h *Hub) fanOut(f Frame) {
	encoded := make(map[Encoding][]byte, 2)
	for c := range h.clients {
		payload, ok := encoded[c.encoding]
		if !ok {
			var err error
			payload, err = c.encoding.Encode(f)
			if err != nil {
				h.logger.Error("cannot encode frame", "err", err)
				continue
			}
			encoded[c.encoding] = payload
		}

		select {
		case c.send <- payload:
		default:
			close(c.send)
			delete(h.clients, c)
			h.logger.Warn("dropping slow feed client")
		}
	}
}

// Broadcast queues a frame for all clients. It gives up when ctx ends.
func (h *Hub) Broadcast(ctx context.Context, f Frame) {
	select {
	case h.broadcast <- f:
	case <-ctx.Done():
	case <-h.done:
	}
}

// add registers c; it reports false once the hub has stopped.
func (h *Hub) add(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-ctx.Done():
		return 0
	case <-h.done:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-ctx.Done():
		return 0
	}
}

// readPump keeps the connection alive; clients have nothing to say.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("feed read error", "err", err)
			}
			return
		}
	}
}

// writePump pumps frames from the hub to the websocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(c.encoding.messageType(), message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
