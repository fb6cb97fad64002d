// Package ws streams filesystem change events to the front-end over
// WebSocket. The hub fans every watch session's batches out to all
// connected clients; a client that cannot keep up is dropped rather than
// allowed to stall a session's emission goroutine.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/glimmerdesk/fsbridge/internal/infrastructure/monitoring"
	"github.com/glimmerdesk/fsbridge/internal/shared/id"
	"github.com/glimmerdesk/fsbridge/internal/watch"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	// Per-client outbound buffer; a full buffer drops the client.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The server binds loopback and CORS gates browser contexts; the
		// upgrade itself accepts any local origin.
		return true
	},
}

// message is one outbound frame.
type message struct {
	Type      string        `json:"type"`
	WatchID   string        `json:"id,omitempty"`
	Events    []watch.Event `json:"events,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

type client struct {
	id   id.ConnID
	conn *websocket.Conn
	send chan message
}

// Hub owns every event-stream connection and pumps watch batches to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[id.ConnID]*client
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(metrics *monitoring.Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[id.ConnID]*client),
		metrics: metrics,
		logger:  logger,
	}
}

// Attach pumps a watch session's batches to every connected client until
// the session channel closes, then announces the session's end.
func (h *Hub) Attach(sid id.WatchID, events <-chan watch.Batch) {
	go func() {
		for batch := range events {
			if h.metrics != nil {
				h.metrics.RecordBatch(len(batch))
			}
			h.broadcast(message{
				Type:      "fs_events",
				WatchID:   sid.String(),
				Events:    batch,
				Timestamp: time.Now().UnixMilli(),
			})
		}
		h.broadcast(message{
			Type:      "watch_closed",
			WatchID:   sid.String(),
			Timestamp: time.Now().UnixMilli(),
		})
	}()
}

// HandleConnection upgrades the request and serves the event stream until
// the client disconnects.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:   id.NewConnID(),
		conn: conn,
		send: make(chan message, sendBuffer),
	}

	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	h.logger.Info("event stream connected", zap.String("conn", cl.id.String()))

	go h.writeLoop(cl)
	h.readLoop(cl)
}

// broadcast queues a frame on every client, dropping clients whose
// buffers are full.
func (h *Hub) broadcast(msg message) {
	h.mu.RLock()
	stalled := make([]*client, 0)
	for _, cl := range h.clients {
		select {
		case cl.send <- msg:
		default:
			stalled = append(stalled, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range stalled {
		h.logger.Warn("dropping stalled event stream", zap.String("conn", cl.id.String()))
		h.remove(cl)
	}
}

func (h *Hub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-cl.send:
			if !ok {
				return
			}
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(msg); err != nil {
				h.remove(cl)
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(cl)
				return
			}
		}
	}
}

// readLoop drains inbound frames so pings and close handshakes are
// processed; the stream is otherwise one-way.
func (h *Hub) readLoop(cl *client) {
	defer h.remove(cl)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	_, live := h.clients[cl.id]
	if live {
		delete(h.clients, cl.id)
		close(cl.send)
	}
	h.mu.Unlock()

	if live {
		cl.conn.Close()
		if h.metrics != nil {
			h.metrics.DecWSConnections()
		}
		h.logger.Info("event stream disconnected", zap.String("conn", cl.id.String()))
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
