package websocket

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mindgraph-backend/application/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin enforcement belongs to the deployment's proxy layer.
		return true
	},
}

// ServeWS returns the handler for GET /ws/sessions/{sessionID}. It upgrades
// the connection, subscribes it to the session's stream and pushes the
// current snapshot so new clients render immediately.
func ServeWS(hub *Hub, sessions *session.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		s, exists := sessions.Get(sessionID)
		if !exists {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade failed", zap.Error(err))
			return
		}

		client := NewClient(sessionID, hub, conn, logger)
		client.Start()

		if err := hub.SendToSession(sessionID, "GRAPH_SNAPSHOT", s.Snapshot()); err != nil {
			logger.Warn("Failed to send initial snapshot",
				zap.String("sessionID", sessionID),
				zap.Error(err),
			)
		}
	}
}
