package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

// StatusSource exposes the hub's live connection state.
type StatusSource interface {
	Online(role models.Role, identity string) bool
	Counts() map[models.Role]int
}

type PresenceHandler struct {
	hub StatusSource
}

func NewPresenceHandler(hub StatusSource) *PresenceHandler {
	return &PresenceHandler{hub: hub}
}

// Get godoc
// @Summary Principal presence
// @Description Report whether a principal has at least one live connection on this instance.
// @Tags presence
// @Produce json
// @Param role path string true "Role (customer, business or admin)"
// @Param id path string true "Principal id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Unknown role"
// @Security BearerAuth
// @Router /presence/{role}/{id} [get]
func (h *PresenceHandler) Get(c *gin.Context) {
	role, err := models.ParseRole(c.Param("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	identity := c.Param("id")

	c.JSON(http.StatusOK, gin.H{
		"role":   role,
		"id":     identity,
		"online": h.hub.Online(role, identity),
	})
}

// Stats godoc
// @Summary Connection totals
// @Description Live connection counts per role on this instance.
// @Tags presence
// @Produce json
// @Success 200 {object} map[string]int
// @Security BearerAuth
// @Router /presence/stats [get]
func (h *PresenceHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Counts())
}
