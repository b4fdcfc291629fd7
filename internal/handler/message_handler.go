package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courierlab/messenger-backend/internal/common"
	"github.com/courierlab/messenger-backend/internal/domain"
	"github.com/courierlab/messenger-backend/internal/middleware"
	"github.com/courierlab/messenger-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// MessageHandler handles message requests
type MessageHandler struct {
	service service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Send handles POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	msg, err := h.service.Send(middleware.GetUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConstraintViolation), errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusUnprocessableEntity, "message rejected", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "failed to send message", err)
		}
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: msg})
}

// Get handles GET /api/v1/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message ID", nil)
		return
	}

	msg, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, common.ErrMessageNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "message not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to fetch message", err)
		return
	}

	common.SuccessResponse(c, msg, nil)
}

// Edit handles PUT /api/v1/messages/:id
func (h *MessageHandler) Edit(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message ID", nil)
		return
	}

	var req domain.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	msg, err := h.service.Edit(id, middleware.GetUserID(c), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMessageNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "message not found", nil)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "only the sender can edit a message", nil)
		case errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusUnprocessableEntity, "edit rejected", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "failed to edit message", err)
		}
		return
	}

	common.SuccessResponse(c, msg, nil)
}

// MarkAsRead handles POST /api/v1/messages/:id/read
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message ID", nil)
		return
	}

	if err := h.service.MarkAsRead(id, middleware.GetUserID(c)); err != nil {
		switch {
		case errors.Is(err, common.ErrMessageNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "message not found", nil)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "only the receiver can mark a message read", nil)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "failed to mark message read", err)
		}
		return
	}

	common.SuccessResponse(c, gin.H{"success": true}, nil)
}

// GetUnread handles GET /api/v1/messages/unread
func (h *MessageHandler) GetUnread(c *gin.Context) {
	messages, err := h.service.GetUnread(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to fetch unread messages", err)
		return
	}
	common.SuccessResponse(c, messages, &common.Meta{Total: int64(len(messages))})
}

// GetHistory handles GET /api/v1/messages/:id/history
func (h *MessageHandler) GetHistory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message ID", nil)
		return
	}

	histories, err := h.service.GetHistory(id)
	if err != nil {
		if errors.Is(err, common.ErrMessageNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "message not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to fetch message history", err)
		return
	}

	common.SuccessResponse(c, histories, &common.Meta{Total: int64(len(histories))})
}

// GetConversations handles GET /api/v1/conversations
func (h *MessageHandler) GetConversations(c *gin.Context) {
	summaries, err := h.service.GetConversations(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to fetch conversations", err)
		return
	}
	common.SuccessResponse(c, summaries, &common.Meta{Total: int64(len(summaries))})
}

func parseID(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
