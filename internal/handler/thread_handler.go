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

// ThreadHandler serves materialized conversation threads
type ThreadHandler struct {
	service service.ThreadService
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(service service.ThreadService) *ThreadHandler {
	return &ThreadHandler{service: service}
}

// GetThread handles GET /api/v1/conversations/:partnerID/thread
func (h *ThreadHandler) GetThread(c *gin.Context) {
	partnerID, err := strconv.ParseUint(c.Param("partnerID"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid partner ID", nil)
		return
	}

	forest, err := h.service.GetConversationThread(middleware.GetUserID(c), partnerID)
	if err != nil {
		if errors.Is(err, common.ErrCycleDetected) {
			common.ErrorResponse(c, http.StatusInternalServerError, "conversation thread is corrupted", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to materialize thread", err)
		return
	}

	common.SuccessResponse(c, forest, nil)
}
