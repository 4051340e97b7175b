package chathub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"popin/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketClient implements the Client interface over gorilla/websocket.
type WebSocketClient struct {
	SessionID string
	PlaceID   string
	Conn      *websocket.Conn
	Hub       *Hub
	Send      chan models.ChatMessage
	Log       *zap.Logger
}

func (c *WebSocketClient) GetSessionID() string                      { return c.SessionID }
func (c *WebSocketClient) GetPlaceID() string                        { return c.PlaceID }
func (c *WebSocketClient) GetSendChannel() chan<- models.ChatMessage { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close shuts down the send channel, which stops the write pump. The read
// pump exits when the connection closes.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Log.Warn("websocket read error",
					zap.String("session_id", c.SessionID), zap.Error(err))
			}
			break
		}

		var msg models.ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.Log.Warn("invalid message from client",
				zap.String("session_id", c.SessionID), zap.Error(err))
			continue
		}

		// The sender and room are fixed by the connection, not the payload.
		msg.SenderID = c.SessionID
		msg.PlaceID = c.PlaceID

		c.Hub.IncomingCh <- msg
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(msg)
			if err != nil {
				c.Log.Warn("failed to encode message",
					zap.String("session_id", c.SessionID), zap.Error(err))
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(payload)

			// Flush anything else already queued on the channel.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				next := <-c.Send
				extra, _ := json.Marshal(next)
				w.Write(extra)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
