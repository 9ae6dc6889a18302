// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/simforge/studio3d/internal/models"
	"github.com/simforge/studio3d/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Production deployments should restrict origins.
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendQueueSize  = 16
	maxMessageSize = 512
)

// WSClient is one connected scene viewer.
type WSClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closed    int32
	lastPing  time.Time
	createdAt time.Time
}

// Close closes the connection once; the write pump owns the send channel.
func (client *WSClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// IsClosed reports whether the client has been closed.
func (client *WSClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// Hub fans scene updates out to every connected viewer. There is a single
// shared scene, so the hub keeps one flat client set.
type Hub struct {
	clients    map[*WSClient]bool
	broadcast  chan []byte
	register   chan *WSClient
	unregister chan *WSClient
	shutdown   chan struct{}

	mutex   sync.RWMutex
	logger  *utils.Logger
	metrics *utils.MetricsCollector
}

// NewHub creates the hub and starts its event loop.
func NewHub() *Hub {
	hub := &Hub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *WSClient, 64),
		unregister: make(chan *WSClient, 64),
		shutdown:   make(chan struct{}),
		logger:     utils.GetLogger(),
		metrics:    utils.GetMetricsCollector(),
	}

	go hub.run()

	return hub
}

func (h *Hub) run() {
	cleanupTicker := time.NewTicker(30 * time.Second)
	defer cleanupTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-cleanupTicker.C:
			h.cleanupExpired()

		case <-h.shutdown:
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *WSClient) {
	h.mutex.Lock()
	h.clients[client] = true
	client.lastPing = time.Now()
	h.mutex.Unlock()

	h.logger.Debugf("websocket client connected (%d total)", h.ClientCount())
}

func (h *Hub) unregisterClient(client *WSClient) {
	h.mutex.Lock()
	delete(h.clients, client)
	h.mutex.Unlock()

	if !client.IsClosed() {
		client.Close()
	}
	h.logger.Debugf("websocket client disconnected (%d total)", h.ClientCount())
}

func (h *Hub) cleanupExpired() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.IsClosed() || time.Since(client.lastPing) > pongWait {
			delete(h.clients, client)
			client.Close()
		}
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	h.mutex.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		if !client.IsClosed() {
			clients = append(clients, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// Slow consumer, drop the connection rather than block.
			client.Close()
		}
	}
	if len(clients) > 0 {
		h.metrics.IncrementCounter(utils.MetricBroadcastsSent)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		client.Close()
	}
	h.clients = make(map[*WSClient]bool)
}

// BroadcastState pushes a scene snapshot to every viewer.
func (h *Hub) BroadcastState(state models.SceneState) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":      "scene_update",
		"scene":     state,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Errorf("failed to marshal scene update: %v", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warnf("broadcast queue full, dropping scene update")
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Status reports the hub state for the status endpoint.
func (h *Hub) Status() map[string]interface{} {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]interface{}, 0, len(h.clients))
	for client := range h.clients {
		if !client.IsClosed() {
			clients = append(clients, map[string]interface{}{
				"connected_at": client.createdAt.Format(time.RFC3339),
				"last_ping":    client.lastPing.Format(time.RFC3339),
			})
		}
	}

	return map[string]interface{}{
		"total_connections": len(clients),
		"clients":           clients,
	}
}

// Shutdown stops the event loop and closes every connection.
func (h *Hub) Shutdown() {
	close(h.shutdown)
}

// ServeWS upgrades the request, sends the current scene immediately and
// starts the read/write pumps.
func (h *Hub) ServeWS(c *gin.Context, current models.SceneState) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("websocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn:      conn,
		send:      make(chan []byte, sendQueueSize),
		lastPing:  time.Now(),
		createdAt: time.Now(),
	}

	h.register <- client

	go h.writePump(client)
	go h.readPump(client)

	if payload, err := json.Marshal(map[string]interface{}{
		"type":      "scene_update",
		"scene":     current,
		"timestamp": time.Now().Format(time.RFC3339),
	}); err == nil {
		select {
		case client.send <- payload:
		default:
		}
	}
}

func (h *Hub) readPump(client *WSClient) {
	defer func() {
		h.unregister <- client
	}()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.lastPing = time.Now()
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Viewers are read-only; incoming messages just keep the
		// connection alive.
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
		client.lastPing = time.Now()
	}
}

func (h *Hub) writePump(client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
