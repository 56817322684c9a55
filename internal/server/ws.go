package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/dispatch"
	"github.com/ayusman/handmouse/internal/logging"
)

const (
	// sendBuffer is how many events may queue per client before new ones
	// are dropped for it.
	sendBuffer = 64
	writeWait  = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// EventsHandler streams dispatched events to WebSocket clients, one JSON
// message per event.
type EventsHandler struct {
	log     logrus.FieldLogger
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewEventsHandler creates an empty event feed.
func NewEventsHandler(log logrus.FieldLogger) *EventsHandler {
	return &EventsHandler{
		log:     logging.OrDiscard(log),
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	defer h.remove(c)

	go h.writeLoop(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventsHandler) writeLoop(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.WithError(err).Debug("event write failed")
			c.conn.Close()
			return
		}
	}
}

func (h *EventsHandler) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish queues e for every client. It never blocks; a client whose queue
// is full misses the event.
func (h *EventsHandler) Publish(e dispatch.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.WithError(err).Error("encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.WithField("type", e.Type).Debug("event dropped for slow client")
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *EventsHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}
