package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-chat-service/internal/service"
)

// OnlineLister reports the identities this instance has connected to a group.
type OnlineLister interface {
	OnlineUsers(groupID string) []string
}

type PresenceHandler struct {
	cache  service.PresenceCache
	local  OnlineLister
	logger *zap.Logger
}

// NewPresenceHandler builds the handler. cache may be nil when redis is not configured.
func NewPresenceHandler(cache service.PresenceCache, local OnlineLister, logger *zap.Logger) *PresenceHandler {
	return &PresenceHandler{cache: cache, local: local, logger: logger}
}

func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	groupID := c.Param("groupId")

	if h.cache != nil {
		users, err := h.cache.OnlineUsers(c.Request.Context(), groupID)
		if err == nil {
			c.JSON(http.StatusOK, OnlineUsersResponse{GroupID: groupID, Users: users, Source: "redis"})
			return
		}
		h.logger.Warn("Presence cache read failed, using local registry",
			zap.String("group_id", groupID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, OnlineUsersResponse{GroupID: groupID, Users: h.local.OnlineUsers(groupID), Source: "local"})
}
