package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Individual subscriber connection.

const ( // ping pong(2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time to write a message to the peer
	PongWait       = 60 * time.Second    // no pong within this window = dead connection
	PingPeriod     = (PongWait * 9) / 10 // ping before pong wait expires, 10% slack for jitter
	MaxMessageSize = 512                 // maximum inbound message size; subscribers only send control frames
	SendBuffer     = 256                 // queued outbound events before the client counts as slow
)

type Client struct {
	ID          string          // unique client ID
	Conn        *websocket.Conn // WebSocket connection
	SendChannel chan []byte     // outbound messages, closed by the hub
	Hub         *Hub            // reference to the central Hub
}

// constructor new client
func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		Conn:        conn,
		SendChannel: make(chan []byte, SendBuffer),
		Hub:         hub,
	}
}

// ReadPump drains the peer so control frames (pong, close) are processed.
// Anything else the subscriber sends is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.logger.Debug("ws_read_error", "client_id", c.ID, "error", err)
			}
			return
		}
	}
}

// WritePump forwards queued messages and pings the peer. It exits when the
// hub closes SendChannel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.SendChannel:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
