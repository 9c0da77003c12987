// Package realtime manages live websocket sessions and event fan-out.
package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Options tunes websocket timeouts and buffering.
type Options struct {
	WriteTimeout time.Duration
	PongTimeout  time.Duration
	SendBuffer   int
}

func (o Options) withDefaults() Options {
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = 60 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	return o
}

// Connection wraps one websocket session. All writes go through the send
// channel so a single goroutine owns the socket.
type Connection struct {
	id     string
	userID uint
	ws     *websocket.Conn
	opts   Options
	log    zerolog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection wraps an upgraded websocket for a user.
func NewConnection(ws *websocket.Conn, userID uint, opts Options, log zerolog.Logger) *Connection {
	opts = opts.withDefaults()
	id := uuid.NewString()
	return &Connection{
		id:     id,
		userID: userID,
		ws:     ws,
		opts:   opts,
		log:    log.With().Str("connection_id", id).Uint("user_id", userID).Logger(),
		send:   make(chan []byte, opts.SendBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the unique session identifier.
func (c *Connection) ID() string { return c.id }

// UserID returns the authenticated owner of the session.
func (c *Connection) UserID() uint { return c.userID }

// Send queues a payload for delivery. It never blocks: a full buffer means
// the client cannot keep up and the payload is rejected.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.done:
		return fmt.Errorf("connection closed")
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Close tears the session down. Safe to call from any goroutine, repeatedly.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		deadline := time.Now().Add(c.opts.WriteTimeout)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.ws.Close()
	})
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings. It returns when the session closes.
func (c *Connection) WritePump() {
	pingInterval := c.opts.PongTimeout * 9 / 10
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadLoop consumes client frames until the socket closes. Inbound messages
// are ignored; the socket is push-only and reads exist to service pongs and
// detect disconnects.
func (c *Connection) ReadLoop() {
	defer c.Close()

	c.ws.SetReadLimit(4096)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
	}
}
