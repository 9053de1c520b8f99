package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler to WebSocket connections

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the UI is served from a webview origin, so every origin is accepted
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler: upgrade the request and subscribe the connection to hub
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error
			hub.logger.Warn("ws_upgrade_failed", "error", err)
			return
		}

		client := NewClient(uuid.NewString(), conn, hub)
		if !hub.Add(client) {
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
