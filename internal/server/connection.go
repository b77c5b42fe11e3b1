package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBufferSize = 256
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is a single WebSocket session (§6). It implements Sink and
// owns the session's round trip to the Router; seating and all game
// semantics live below it.
type Connection struct {
	conn      *websocket.Conn
	send      chan OutboundEnvelope
	sessionID string
	router    *Router
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper and registers it with
// router, returning it unstarted. Call Start to begin pumping.
func NewConnection(conn *websocket.Conn, router *Router, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = log.Default()
	}

	c := &Connection{
		conn:   conn,
		send:   make(chan OutboundEnvelope, sendBufferSize),
		router: router,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
	c.sessionID = router.Connect(c)
	return c
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.router.Disconnect(c.sessionID)
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Send implements Sink. It never blocks: a full buffer closes the
// connection, matching the router's best-effort delivery policy (§5).
func (c *Connection) Send(env OutboundEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("attempted to send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- env:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("connection send buffer full, closing connection")
		_ = c.Close()
	}
}

// SessionID returns the session identifier assigned by the router.
func (c *Connection) SessionID() string {
	return c.sessionID
}

// readPump handles incoming frames from the client.
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}

		env, err := ParseInbound(raw)
		if err != nil {
			c.Send(ParseError(err.Error()))
			continue
		}
		env.SessionID = c.sessionID
		env.ReqID = uuid.NewString()

		if err := c.router.Route(c.sessionID, env); err != nil {
			c.logger.Debug("route failed", "session", c.sessionID, "error", err)
			c.Send(ParseError(err.Error()))
		}
	}
}

// writePump handles outgoing frames to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
