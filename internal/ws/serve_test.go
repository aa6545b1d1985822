package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerg864/SecuRent-sub001/internal/auth"
	"github.com/omerg864/SecuRent-sub001/internal/models"
)

type memoryStore map[string]bool

func (m memoryStore) Exists(ctx context.Context, id string) (bool, error) {
	return m[id], nil
}

const (
	customerSecret = "customer-secret"
	businessSecret = "business-secret"
	adminSecret    = "admin-secret"
)

func newE2EHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	tokens := auth.NewTokenService(
		auth.Secrets{Customer: customerSecret, Business: businessSecret, Admin: adminSecret},
		memoryStore{"cust-1": true},
		memoryStore{"biz-1": true},
		memoryStore{"admin-1": true},
	)
	hub := NewHub(tokens, nil, Options{HandshakeTimeout: 500 * time.Millisecond})
	go hub.Run()
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	return frame
}

func mint(t *testing.T, role models.Role, identity, secret string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.Sign(role, identity, secret, ttl)
	require.NoError(t, err)
	return token
}

func TestServeWSQueryParamHandshake(t *testing.T) {
	hub, server := newE2EHub(t)

	token := mint(t, models.RoleCustomer, "cust-1", customerSecret, time.Minute)
	conn := dial(t, server, fmt.Sprintf("?token=%s&type=customer", token))

	assert.Equal(t, Greeting, string(readFrame(t, conn)))

	require.Eventually(t, func() bool {
		return hub.Online(models.RoleCustomer, "cust-1")
	}, 2*time.Second, 10*time.Millisecond)

	n := models.NewNotification(models.RoleCustomer, "cust-1", "Booking confirmed", "See you tomorrow", "booking")
	require.Equal(t, 1, hub.Deliver(models.RoleCustomer, "cust-1", n))

	var envelope struct {
		Type string `json:"type"`
		Data struct {
			Notification models.Notification `json:"notification"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(readFrame(t, conn), &envelope))
	assert.Equal(t, "notification", envelope.Type)
	assert.Equal(t, "Booking confirmed", envelope.Data.Notification.Title)
	assert.Equal(t, "cust-1", envelope.Data.Notification.Customer)
}

func TestServeWSFirstFrameHandshake(t *testing.T) {
	hub, server := newE2EHub(t)

	conn := dial(t, server, "")
	assert.Equal(t, Greeting, string(readFrame(t, conn)))

	token := mint(t, models.RoleBusiness, "biz-1", businessSecret, time.Minute)
	frame, err := json.Marshal(map[string]any{
		"type": "auth",
		"data": map[string]string{"token": token, "type": "business"},
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	require.Eventually(t, func() bool {
		return hub.Online(models.RoleBusiness, "biz-1")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSRejectsBadCredentials(t *testing.T) {
	cases := []struct {
		name  string
		token func(t *testing.T) string
		role  string
	}{
		{
			name:  "ExpiredToken",
			token: func(t *testing.T) string { return mint(t, models.RoleCustomer, "cust-1", customerSecret, -time.Minute) },
			role:  "customer",
		},
		{
			name:  "CrossRoleSecret",
			token: func(t *testing.T) string { return mint(t, models.RoleBusiness, "biz-1", businessSecret, time.Minute) },
			role:  "customer",
		},
		{
			name:  "UnknownPrincipal",
			token: func(t *testing.T) string { return mint(t, models.RoleAdmin, "admin-9", adminSecret, time.Minute) },
			role:  "admin",
		},
		{
			name:  "GarbageToken",
			token: func(t *testing.T) string { return "not-a-jwt" },
			role:  "customer",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hub, server := newE2EHub(t)

			conn := dial(t, server, fmt.Sprintf("?token=%s&type=%s", tc.token(t), tc.role))

			// The greeting may or may not arrive before the server close
			// wins the race; either way the connection must end and the
			// registry must stay empty.
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			for {
				_, frame, err := conn.ReadMessage()
				if err != nil {
					break
				}
				assert.Equal(t, Greeting, string(frame))
			}

			for _, role := range models.AllRoles() {
				assert.Equal(t, 0, hub.Counts()[role])
			}
		})
	}
}

func TestServeWSHandshakeWindowExpires(t *testing.T) {
	_, server := newE2EHub(t)

	conn := dial(t, server, "")
	assert.Equal(t, Greeting, string(readFrame(t, conn)))

	// Never authenticate; the server closes the socket after the window.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestServeWSMultiDeviceFanOut(t *testing.T) {
	hub, server := newE2EHub(t)

	token := mint(t, models.RoleCustomer, "cust-1", customerSecret, time.Minute)
	phone := dial(t, server, fmt.Sprintf("?token=%s&type=customer", token))
	laptop := dial(t, server, fmt.Sprintf("?token=%s&type=customer", token))

	assert.Equal(t, Greeting, string(readFrame(t, phone)))
	assert.Equal(t, Greeting, string(readFrame(t, laptop)))

	require.Eventually(t, func() bool {
		return hub.Counts()[models.RoleCustomer] == 2
	}, 2*time.Second, 10*time.Millisecond)

	n := models.NewNotification(models.RoleCustomer, "cust-1", "t", "c", "system")
	require.Equal(t, 2, hub.Deliver(models.RoleCustomer, "cust-1", n))

	for _, conn := range []*websocket.Conn{phone, laptop} {
		var envelope Envelope
		require.NoError(t, json.Unmarshal(readFrame(t, conn), &envelope))
		assert.Equal(t, MessageTypeNotification, envelope.Type)
	}
}
