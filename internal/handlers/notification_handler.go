package handlers

import (
	"net/http"

	"votearena/internal/apperr"
	"votearena/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Create stores a notification for a user
// POST /api/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req struct {
		UserID  string `json:"userId" binding:"required"`
		Title   string `json:"title" binding:"required"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("userId, title and message are required"))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(c, apperr.Validation("Invalid user id."))
		return
	}

	notification, err := h.notificationService.Create(c.Request.Context(), userID, req.Title, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Notification created",
		"data":    notification,
	})
}

// List returns a user's notifications, newest first
// GET /api/notifications/:userId
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondError(c, apperr.Validation("Invalid user id."))
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// MarkAllRead flags all of a user's notifications as read
// PUT /api/notifications/:userId/read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondError(c, apperr.Validation("Invalid user id."))
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
	})
}
