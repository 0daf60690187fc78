// file: websocket/connection.go
package websocket

import (
	"net"
	"time"

	"github.com/gorilla/websocket"
	"school-activities/logger"
)

// WSConn is the part of *websocket.Conn a Connection uses.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection is one subscribed page.
type Connection struct {
	hub  *Hub
	conn WSConn
	send chan []byte
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

func newConnection(h *Hub, conn WSConn) *Connection {
	return &Connection{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// readPump keeps the read deadline alive through pongs. Pages never send anything
// meaningful, so inbound messages are discarded.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn.Printf("readPump: Read error from %v: %v", c.conn.RemoteAddr(), err)
			} else {
				logger.Debug.Printf("readPump: Connection %v closed", c.conn.RemoteAddr())
			}
			return
		}
	}
}

// writePump delivers queued messages and pings the client every pingPeriod.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				logger.Debug.Printf("writePump: Send channel closed for %v", c.conn.RemoteAddr())
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("writePump: Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("writePump: Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}
