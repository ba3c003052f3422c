package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-chat-service/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// handleServiceError maps service layer errors to HTTP responses.
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var validation *service.ValidationError
	var exists *service.GroupExistsError

	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, validation.Message)
	case errors.As(err, &exists):
		c.JSON(http.StatusConflict, gin.H{"error": "Group already exists", "group": exists.Existing})
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrGroupNotFound):
		respondError(c, http.StatusNotFound, "Group not found")
	case errors.Is(err, service.ErrStatusNotFound):
		respondError(c, http.StatusNotFound, "Status not found")
	case errors.Is(err, service.ErrFileNotFound):
		respondError(c, http.StatusNotFound, "File not found")
	case errors.Is(err, service.ErrCourseNotFound):
		respondError(c, http.StatusNotFound, "Course not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrStorageUnavailable):
		respondError(c, http.StatusServiceUnavailable, "File storage is not configured")
	default:
		logger.Error("Unhandled service error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// NotFound is the fallback for unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Route not found", "path": c.Request.URL.Path})
}
