package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub maintains active WebSocket connections keyed by session and fans
// graph updates out to every subscriber of that session.
type Hub struct {
	// Session subscriptions - one session can have multiple connections
	connections map[string]map[*Client]bool // sessionID -> set of clients
	mu          sync.RWMutex

	// Channels for client management
	register   chan *Client
	unregister chan *Client

	// Message broadcasting
	broadcast chan *BroadcastMessage

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// BroadcastMessage represents a message bound for one session's subscribers
type BroadcastMessage struct {
	SessionID string          `json:"-"`
	Type      string          `json:"type"` // e.g. GRAPH_UPDATED
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		connections: make(map[string]map[*Client]bool),
		register:    make(chan *Client, 100),
		unregister:  make(chan *Client, 100),
		broadcast:   make(chan *BroadcastMessage, 1000),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Run starts the hub's main event loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAllConnections()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToSession(message)
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}

// SendToSession queues a message for every subscriber of a session. Callers
// sit on the write path of the delta pipeline, so a full queue drops the
// message instead of blocking; subscribers recover on the next snapshot.
func (h *Hub) SendToSession(sessionID string, messageType string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	message := &BroadcastMessage{
		SessionID: sessionID,
		Type:      messageType,
		Data:      jsonData,
		Timestamp: time.Now().Unix(),
	}

	select {
	case h.broadcast <- message:
		return nil
	default:
		return fmt.Errorf("broadcast queue full, message dropped")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[client.sessionID] == nil {
		h.connections[client.sessionID] = make(map[*Client]bool)
	}
	h.connections[client.sessionID][client] = true

	h.logger.Info("WebSocket client registered",
		zap.String("sessionID", client.sessionID),
		zap.String("connectionID", client.id),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, exists := h.connections[client.sessionID]
	if !exists {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.send)
	}
	if len(clients) == 0 {
		delete(h.connections, client.sessionID)
	}

	h.logger.Info("WebSocket client unregistered",
		zap.String("sessionID", client.sessionID),
		zap.String("connectionID", client.id),
	)
}

func (h *Hub) broadcastToSession(message *BroadcastMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.connections[message.SessionID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer: drop the message rather than block the hub.
			h.logger.Warn("Dropping message for slow client",
				zap.String("sessionID", message.SessionID),
				zap.String("connectionID", client.id),
			)
		}
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, clients := range h.connections {
		for client := range clients {
			close(client.send)
			client.conn.Close()
		}
		delete(h.connections, sessionID)
	}
}
