package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-chat-service/internal/service"
)

type GroupHandler struct {
	groupService service.GroupService
	logger       *zap.Logger
}

func NewGroupHandler(groupService service.GroupService, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, logger: logger}
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), req.Department, req.ClassLevel)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}
