package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/courierlab/messenger-backend/internal/common"
	"github.com/courierlab/messenger-backend/internal/domain"
	"github.com/courierlab/messenger-backend/internal/middleware"
	"github.com/courierlab/messenger-backend/internal/service"
	"github.com/courierlab/messenger-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// UserHandler handles account requests
type UserHandler struct {
	service    service.UserService
	jwtManager *jwt.Manager
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service service.UserService, jwtManager *jwt.Manager) *UserHandler {
	return &UserHandler{service: service, jwtManager: jwtManager}
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(c *gin.Context) {
	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.service.Register(&req)
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			common.ErrorResponse(c, http.StatusConflict, "username already taken", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to register user", err)
		return
	}

	token, err := h.jwtManager.Generate(user.ID, user.Nickname)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: gin.H{
		"user":  user.ToResponse(),
		"token": token,
	}})
}

// Get handles GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user ID", nil)
		return
	}

	user, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "user not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to fetch user", err)
		return
	}

	common.SuccessResponse(c, user.ToResponse(), nil)
}

// DeleteMe handles DELETE /api/v1/users/me
//
// Removing an account purges every message, notification and history
// row referencing it in one transaction.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.service.Delete(userID); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "user not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete account", err)
		return
	}

	common.SuccessResponse(c, gin.H{
		"deleted_at": time.Now().Format(time.RFC3339),
	}, nil)
}
