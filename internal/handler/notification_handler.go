package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courierlab/messenger-backend/internal/common"
	"github.com/courierlab/messenger-backend/internal/middleware"
	"github.com/courierlab/messenger-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetUnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	summary, err := h.service.GetUnreadCount(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to count notifications", err)
		return
	}
	common.SuccessResponse(c, summary, nil)
}

// GetList handles GET /api/v1/notifications
func (h *NotificationHandler) GetList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.GetList(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// MarkAsRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification ID", nil)
		return
	}

	if err := h.service.MarkAsRead(middleware.GetUserID(c), id); err != nil {
		switch {
		case errors.Is(err, common.ErrNotificationNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "notification not found", nil)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "not your notification", nil)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "failed to mark notification read", err)
		}
		return
	}

	common.SuccessResponse(c, gin.H{"success": true}, nil)
}

// MarkAllAsRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.service.MarkAllAsRead(middleware.GetUserID(c)); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to mark notifications read", err)
		return
	}
	common.SuccessResponse(c, gin.H{"success": true}, nil)
}
