package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerg864/SecuRent-sub001/internal/models"
	"github.com/omerg864/SecuRent-sub001/internal/services"
)

type stubHub struct {
	attempts int
	online   bool

	lastRole     models.Role
	lastIdentity string
	lastPayload  *models.Notification
}

func (s *stubHub) Deliver(role models.Role, identity string, n *models.Notification) int {
	s.lastRole = role
	s.lastIdentity = identity
	s.lastPayload = n
	return s.attempts
}

func (s *stubHub) Online(role models.Role, identity string) bool {
	return s.online
}

func setupPushRouter(hub *stubHub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewNotificationHandler(services.NewNotificationService(hub, nil, nil))

	r := gin.New()
	r.POST("/notifications/push", handler.Push)
	return r
}

func TestPushJSONBody(t *testing.T) {
	hub := &stubHub{attempts: 1, online: true}
	r := setupPushRouter(hub)

	body, _ := json.Marshal(gin.H{
		"targetRole": "customer",
		"targetId":   "cust-1",
		"title":      "Order ready",
		"content":    "Pick up at the counter",
		"type":       "order",
	})
	req := httptest.NewRequest(http.MethodPost, "/notifications/push", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"delivered":1,"online":true}`, w.Body.String())
	assert.Equal(t, models.RoleCustomer, hub.lastRole)
	assert.Equal(t, "cust-1", hub.lastIdentity)
	require.NotNil(t, hub.lastPayload)
	assert.Equal(t, "Order ready", hub.lastPayload.Title)
	assert.Equal(t, "order", hub.lastPayload.Type)
}

func TestPushOfflineRecipient(t *testing.T) {
	r := setupPushRouter(&stubHub{attempts: 0, online: false})

	body, _ := json.Marshal(gin.H{
		"targetRole": "business",
		"targetId":   "biz-1",
		"title":      "t",
	})
	req := httptest.NewRequest(http.MethodPost, "/notifications/push", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Best-effort contract: no live connection is still an accepted push.
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"delivered":0,"online":false}`, w.Body.String())
}

func TestPushRejectsBadRequests(t *testing.T) {
	r := setupPushRouter(&stubHub{})

	cases := []struct {
		name string
		body gin.H
	}{
		{"MissingTargetRole", gin.H{"targetId": "cust-1", "title": "t"}},
		{"MissingTargetID", gin.H{"targetRole": "customer", "title": "t"}},
		{"MissingTitle", gin.H{"targetRole": "customer", "targetId": "cust-1"}},
		{"UnknownRole", gin.H{"targetRole": "supplier", "targetId": "x", "title": "t"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest(http.MethodPost, "/notifications/push", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPushMultipartForm(t *testing.T) {
	hub := &stubHub{attempts: 1}
	r := setupPushRouter(hub)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("targetRole", "business")
	form.WriteField("targetId", "biz-1")
	form.WriteField("title", "New review")
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/notifications/push", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "biz-1", hub.lastIdentity)
}

type stubStatus struct {
	online bool
	counts map[models.Role]int
}

func (s *stubStatus) Online(role models.Role, identity string) bool { return s.online }

func (s *stubStatus) Counts() map[models.Role]int { return s.counts }

func setupPresenceRouter(hub StatusSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPresenceHandler(hub)

	r := gin.New()
	r.GET("/presence/stats", handler.Stats)
	r.GET("/presence/:role/:id", handler.Get)
	return r
}

func TestPresenceGet(t *testing.T) {
	t.Run("OnlinePrincipal", func(t *testing.T) {
		r := setupPresenceRouter(&stubStatus{online: true})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/presence/customer/cust-1", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"role":"customer","id":"cust-1","online":true}`, w.Body.String())
	})

	t.Run("UnknownRole", func(t *testing.T) {
		r := setupPresenceRouter(&stubStatus{})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/presence/supplier/x-1", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPresenceStats(t *testing.T) {
	r := setupPresenceRouter(&stubStatus{counts: map[models.Role]int{
		models.RoleCustomer: 3,
		models.RoleBusiness: 1,
		models.RoleAdmin:    0,
	}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/presence/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"customer":3,"business":1,"admin":0}`, w.Body.String())
}
