package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Conn is the transport handle the client writes to and reads from.
// *websocket.Conn satisfies it; tests substitute in-memory fakes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live transport-level session. It is created unauthenticated
// on socket-upgrade accept and promoted by a successful handshake; its role
// and identity are immutable after that.
type Client struct {
	id   string
	hub  *Hub
	conn Conn
	send chan []byte

	mu            sync.RWMutex
	role          models.Role
	identity      string
	authenticated bool

	// atomic flag tracking transport state
	closed int32

	// sendMu serializes queueing on send against closing it, so a
	// concurrent deliver can never hit a closed channel.
	sendMu     sync.RWMutex
	sendClosed bool

	handshake *time.Timer
}

func newClient(hub *Hub, conn Conn) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.opts.SendBuffer),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Principal returns the authenticated role and identity. ok is false until
// the handshake completes.
func (c *Client) Principal() (models.Role, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role, c.identity, c.authenticated
}

// Authenticated reports whether the handshake has completed.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// setPrincipal promotes the client to the authenticated state. promoted is
// false when the client already held a principal; ok is false when that
// principal differs from the offered one.
func (c *Client) setPrincipal(role models.Role, identity string) (promoted, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authenticated {
		return false, c.role == role && c.identity == identity
	}
	c.role = role
	c.identity = identity
	c.authenticated = true
	return true, true
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close marks the client as closed and tears down the transport. Safe to
// call from any goroutine, any number of times.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.stopHandshakeTimer()
		if err := c.conn.Close(); err != nil {
			slog.Debug("Error closing connection", "clientID", c.id, "error", err)
		}
	}
}

func (c *Client) closeSendChannel() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) startHandshakeTimer(d time.Duration) {
	c.handshake = time.AfterFunc(d, func() {
		if !c.Authenticated() {
			slog.Warn("Handshake window expired, closing connection", "clientID", c.id)
			c.close()
		}
	})
}

func (c *Client) stopHandshakeTimer() {
	if c.handshake != nil {
		c.handshake.Stop()
	}
}

// Send queues a payload for the single writer goroutine. It never blocks:
// a full buffer means the peer cannot keep up, so the client is closed
// instead of stalling delivery to everyone else.
func (c *Client) Send(payload []byte) error {
	if c.isClosed() {
		return ErrClientClosed
	}

	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.sendClosed {
		return ErrClientClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		role, identity, _ := c.Principal()
		slog.Warn("Send buffer full, closing client", "clientID", c.id, "role", role, "identity", identity)
		c.close()
		return ErrClientClosed
	}
}

func (c *Client) readPump() {
	defer func() {
		c.close()

		select {
		case c.hub.unregister <- c:
		case <-time.After(5 * time.Second):
			slog.Warn("Timeout sending unregister request", "clientID", c.id)
		case <-c.hub.ctx.Done():
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		if c.isClosed() {
			return websocket.ErrCloseSent
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "clientID", c.id, "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "clientID", c.id, "error", err)
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			// A malformed frame is not fatal; log and keep the
			// connection open.
			slog.Debug("Ignoring malformed frame", "clientID", c.id, "error", err)
			continue
		}

		switch envelope.Type {
		case MessageTypeAuth:
			var data AuthData
			if err := json.Unmarshal(envelope.Data, &data); err != nil {
				slog.Debug("Ignoring malformed auth frame", "clientID", c.id, "error", err)
				continue
			}
			c.hub.authenticate(c, data.Token, data.Type)

		default:
			slog.Debug("Ignoring frame of unknown type", "clientID", c.id, "type", envelope.Type)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if c.isClosed() {
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				slog.Debug("Error writing message", "clientID", c.id, "error", err)
				return
			}

		case <-ticker.C:
			if c.isClosed() {
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("Error sending ping", "clientID", c.id, "error", err)
				return
			}

		case <-c.hub.ctx.Done():
			return
		}
	}
}
