package hub

import (
	"context"
	"time"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
)

// Client is one websocket subscription to a single feed.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	feed  models.Feed
	limit int
	send  chan []byte
}

// Attach registers conn as a subscriber of feed and starts its pumps. The
// first frame on the connection is the current snapshot. Attach returns an
// error without touching conn if ctx ends or the hub has stopped before
// registration completes; the caller then owns conn.
func (h *Hub) Attach(ctx context.Context, conn *websocket.Conn, feed models.Feed, limit int) error {
	c := &Client{
		hub:   h,
		conn:  conn,
		feed:  feed,
		limit: limit,
		send:  make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.stopped:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
	go c.writePump()
	go c.readPump()
	return nil
}

// readPump only drains control frames; subscribers never send data.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected websocket close", zap.String("feed", string(c.feed)), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.hub.log.Debug("failed to write snapshot", zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
