package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/omerg864/SecuRent-sub001/internal/ws"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket godoc
// @Summary WebSocket connection
// @Description Establish a WebSocket connection for real-time notifications. Authenticate via token/type query parameters or a first-frame auth message.
// @Tags websocket
// @Param token query string false "Bearer credential"
// @Param type query string false "Claimed role (customer, business or admin)"
// @Success 101 "Switching Protocols - WebSocket connection established"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
