package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/middleware"
	"campus-chat-service/internal/service"
)

type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// SyncUser creates or updates the caller's profile and assigns its cohort group.
func (h *UserHandler) SyncUser(c *gin.Context) {
	var req SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.userService.SyncUser(c.Request.Context(), req.toInput())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetByUID(c.Request.Context(), c.Param("uid"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// currentUser resolves the authenticated subject to its stored record.
func currentUser(c *gin.Context, users service.UserService, logger *zap.Logger) (*domain.User, bool) {
	uid, ok := middleware.GetSubject(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}
	user, err := users.FindBySubject(c.Request.Context(), uid)
	if err != nil {
		handleServiceError(c, logger, err)
		return nil, false
	}
	return user, true
}
