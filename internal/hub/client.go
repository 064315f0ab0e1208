package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/farizks7575/chat-app/internal/config"
	"github.com/farizks7575/chat-app/pkg/log"
)

// Client wraps one live websocket connection. It exists from
// connection-open to connection-close and is 1:1 with the socket.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	cfg  config.WebSocketConfig
}

// NewClient creates a client for an upgraded connection.
func NewClient(id string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	return &Client{
		ID:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		cfg:  cfg,
	}
}

// ReadPump reads events off the connection in arrival order and hands them
// to handler. On any exit (transport error, client navigation, ping
// timeout, server shutdown) it unbinds the connection from the registry,
// whether or not the connection ever bound.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.hub.UnbindClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.L().Warn().Err(err).Str(log.FieldConnID, c.ID).Msg("websocket read error")
			}
			break
		}

		handler(c, message)
	}
}

const defaultPingInterval = 25 * time.Second

// pingInterval returns the configured ping interval, falling back to the
// default for zero or negative values which would panic time.NewTicker.
func pingInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultPingInterval
	}
	return d
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval(c.cfg.PingInterval))
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent marshals an event and queues it for delivery. A full send
// buffer drops the event rather than blocking the caller: a slow consumer
// catches up on its next fetch.
func (c *Client) SendEvent(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
	default:
	}
	return nil
}

var _ Sink = (*Client)(nil)
