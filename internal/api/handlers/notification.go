package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omerg864/SecuRent-sub001/internal/models"
	"github.com/omerg864/SecuRent-sub001/internal/services"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type pushRequest struct {
	TargetRole string `form:"targetRole" json:"targetRole" binding:"required"`
	TargetID   string `form:"targetId" json:"targetId" binding:"required"`
	Title      string `form:"title" json:"title" binding:"required"`
	Content    string `form:"content" json:"content"`
	Type       string `form:"type" json:"type"`
}

type pushResponse struct {
	Delivered int  `json:"delivered"`
	Online    bool `json:"online"`
}

// Push godoc
// @Summary Push a notification
// @Description Deliver a notification to every live connection of the target principal. Best-effort: an offline recipient still yields 202.
// @Tags notifications
// @Accept json
// @Accept mpfd
// @Produce json
// @Param request body pushRequest true "Notification to push"
// @Success 202 {object} pushResponse
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Security BearerAuth
// @Router /notifications/push [post]
func (h *NotificationHandler) Push(c *gin.Context) {
	var req pushRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	push := services.PushRequest{
		TargetRole: req.TargetRole,
		TargetID:   req.TargetID,
		Title:      req.Title,
		Content:    req.Content,
		Kind:       req.Type,
	}

	// Optional attachment, multipart only.
	if file, err := c.FormFile("image"); err == nil {
		push.Image = file
	}

	attempts, err := h.service.Push(c.Request.Context(), push)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, _ := models.ParseRole(req.TargetRole)
	c.JSON(http.StatusAccepted, pushResponse{
		Delivered: attempts,
		Online:    h.service.Online(role, req.TargetID),
	})
}
