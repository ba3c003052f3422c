package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campus-chat-service/internal/config"
)

const (
	defaultSendBuffer     = 256
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 64 * 1024
)

// wsConn owns a websocket and its buffered outbox. It is the Sink of a live peer.
type wsConn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool

	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64
}

func newWSConn(ws *websocket.Conn, cfg config.RealtimeConfig) *wsConn {
	c := &wsConn{
		ws:             ws,
		writeWait:      cfg.WriteWait,
		pongWait:       cfg.PongWait,
		maxMessageSize: cfg.MaxMessageSize,
	}
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	if c.writeWait <= 0 {
		c.writeWait = defaultWriteWait
	}
	if c.pongWait <= 0 {
		c.pongWait = defaultPongWait
	}
	if c.maxMessageSize <= 0 {
		c.maxMessageSize = defaultMaxMessageSize
	}
	c.pingPeriod = (c.pongWait * 9) / 10
	c.send = make(chan []byte, buffer)
	return c
}

// Send enqueues frame without blocking. A full outbox drops the frame.
func (c *wsConn) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend stops the write pump after it flushes queued frames.
func (c *wsConn) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// closeWith sends a close frame with code and reason and drops the socket.
func (c *wsConn) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeWait))
	_ = c.ws.Close()
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
