package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

// Authenticator verifies a bearer token against the signing secret of the
// claimed role and resolves the subject to an existing principal of that
// role. Any failure must be treated as fail-closed by the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string, role models.Role) (identity string, err error)
}

// Presence mirrors register/unregister events into an external store so the
// REST side can answer "is this principal reachable" cheaply. Optional.
type Presence interface {
	SetOnline(ctx context.Context, role models.Role, identity string) error
	SetOffline(ctx context.Context, role models.Role, identity string) error
}

// Options tune the hub's lifecycle handling.
type Options struct {
	// HandshakeTimeout bounds how long a connection may stay
	// unauthenticated before it is closed.
	HandshakeTimeout time.Duration

	// AuthTimeout bounds the principal lookup during a handshake.
	AuthTimeout time.Duration

	// SendBuffer is the per-connection outbound queue size.
	SendBuffer int
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.AuthTimeout <= 0 {
		o.AuthTimeout = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	return o
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub owns the connection registry and routes targeted pushes to it. It is
// constructed once at startup and handed to every collaborator that needs
// to deliver; nothing mutates the registry except through the hub.
type Hub struct {
	registry *Registry
	auth     Authenticator
	presence Presence
	opts     Options

	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub with an empty registry. presence may be nil.
func NewHub(auth Authenticator, presence Presence, opts Options) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		registry:   NewRegistry(),
		auth:       auth,
		presence:   presence,
		opts:       opts.withDefaults(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run processes register/unregister events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.ctx.Done():
			slog.Info("Notification hub shutting down")
			return
		}
	}
}

// Stop cancels the run loop and tears down every live connection.
func (h *Hub) Stop() {
	h.cancel()
	h.registry.each(func(c *Client) {
		c.close()
		c.closeSendChannel()
	})
}

// ServeWS upgrades an HTTP request and accepts the resulting connection.
// A token/type query pair authenticates immediately; otherwise the client
// has one handshake window to send an auth frame.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	query := r.URL.Query()
	h.Accept(conn, query.Get("token"), query.Get("type"))
}

// Accept registers a new connection in the unauthenticated state, sends the
// greeting and starts the read/write pumps. Exported separately from ServeWS
// so tests can drive in-memory transports.
func (h *Hub) Accept(conn Conn, token, claimedRole string) *Client {
	client := newClient(h, conn)
	slog.Info("New WebSocket connection accepted", "clientID", client.id)

	// Greeting goes through the send queue so the writer goroutine stays
	// the only one touching the transport.
	client.send <- []byte(Greeting)

	client.startHandshakeTimer(h.opts.HandshakeTimeout)

	go client.writePump()
	go client.readPump()

	if token != "" {
		h.authenticate(client, token, claimedRole)
	}
	return client
}

// authenticate validates the credential for the claimed role and, on
// success, promotes the client and inserts it into the registry. Every
// failure closes the connection: the caller must reconnect and retry.
func (h *Hub) authenticate(c *Client, token, claimedRole string) {
	role, err := models.ParseRole(claimedRole)
	if err != nil {
		slog.Warn("Handshake failed", "clientID", c.id, "error", err)
		c.close()
		return
	}

	ctx, cancel := context.WithTimeout(h.ctx, h.opts.AuthTimeout)
	defer cancel()

	identity, err := h.auth.Authenticate(ctx, token, role)
	if err != nil {
		slog.Warn("Handshake failed", "clientID", c.id, "role", role, "error", err)
		c.close()
		return
	}

	promoted, ok := c.setPrincipal(role, identity)
	if !ok {
		// Re-auth for a different principal on a live connection is
		// never allowed.
		slog.Warn("Re-auth principal mismatch, closing", "clientID", c.id)
		c.close()
		return
	}
	c.stopHandshakeTimer()

	if !promoted {
		// Same-principal re-auth; the client is already registered.
		return
	}

	select {
	case h.register <- c:
	case <-h.ctx.Done():
		c.close()
	}
}

func (h *Hub) registerClient(c *Client) {
	if err := h.registry.Add(c); err != nil {
		slog.Error("Failed to register client", "clientID", c.id, "error", err)
		c.close()
		return
	}

	role, identity, _ := c.Principal()
	slog.Info("Client registered", "clientID", c.id, "role", role, "identity", identity)

	if h.presence != nil {
		if err := h.presence.SetOnline(h.ctx, role, identity); err != nil {
			slog.Error("Failed to set principal online", "identity", identity, "error", err)
		}
	}
}

func (h *Hub) unregisterClient(c *Client) {
	h.registry.Remove(c)
	c.closeSendChannel()

	role, identity, authenticated := c.Principal()
	if !authenticated {
		return
	}
	slog.Info("Client unregistered", "clientID", c.id, "role", role, "identity", identity)

	if h.presence != nil && !h.registry.Online(role, identity) {
		if err := h.presence.SetOffline(context.Background(), role, identity); err != nil {
			slog.Error("Failed to set principal offline", "identity", identity, "error", err)
		}
	}
}

// Deliver pushes a notification to every live connection matching the role
// and identity. Best-effort: a write failure on one connection is logged and
// never aborts delivery to the rest, and zero matches is a silent no-op.
// It returns the number of write attempts.
func (h *Hub) Deliver(role models.Role, identity string, n *models.Notification) int {
	payload, err := EncodeNotification(n)
	if err != nil {
		slog.Error("Failed to encode notification", "error", err)
		return 0
	}

	clients := h.registry.Connections(role, identity)
	for _, c := range clients {
		if err := c.Send(payload); err != nil {
			slog.Debug("Skipping push to closed client", "clientID", c.id, "error", err)
		}
	}
	return len(clients)
}

// Challenge round-trips an auth-type frame to every live connection of the
// principal, asking the client to re-send its credentials.
func (h *Hub) Challenge(role models.Role, identity string) int {
	payload := EncodeAuthChallenge()
	clients := h.registry.Connections(role, identity)
	for _, c := range clients {
		if err := c.Send(payload); err != nil {
			slog.Debug("Skipping challenge to closed client", "clientID", c.id, "error", err)
		}
	}
	return len(clients)
}

// Online reports whether the principal has at least one live connection.
func (h *Hub) Online(role models.Role, identity string) bool {
	return h.registry.Online(role, identity)
}

// Counts returns live connection totals per role.
func (h *Hub) Counts() map[models.Role]int {
	return h.registry.Counts()
}
