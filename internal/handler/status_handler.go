package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-chat-service/internal/service"
)

type StatusHandler struct {
	statusService service.StatusService
	userService   service.UserService
	logger        *zap.Logger
}

func NewStatusHandler(statusService service.StatusService, userService service.UserService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		userService:   userService,
		logger:        logger,
	}
}

func (h *StatusHandler) ListStatuses(c *gin.Context) {
	statuses, err := h.statusService.ListActive(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// CreateStatus replaces the poster's status in the group. Clients announce it
// over the socket with update_status.
func (h *StatusHandler) CreateStatus(c *gin.Context) {
	var req CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := h.statusService.Create(c.Request.Context(), service.CreateStatusInput{
		UserID:  req.UserID,
		GroupID: req.GroupID,
		Text:    req.Text,
		Music:   req.Music,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

func (h *StatusHandler) DeleteStatus(c *gin.Context) {
	user, ok := currentUser(c, h.userService, h.logger)
	if !ok {
		return
	}

	if err := h.statusService.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
