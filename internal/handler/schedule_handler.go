package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-chat-service/internal/service"
)

// ScheduleHandler serves the caller's own timetable.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	userService     service.UserService
	logger          *zap.Logger
}

func NewScheduleHandler(scheduleService service.ScheduleService, userService service.UserService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		userService:     userService,
		logger:          logger,
	}
}

func (h *ScheduleHandler) ListCourses(c *gin.Context) {
	user, ok := currentUser(c, h.userService, h.logger)
	if !ok {
		return
	}

	courses, err := h.scheduleService.List(c.Request.Context(), user.ID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *ScheduleHandler) AddCourse(c *gin.Context) {
	user, ok := currentUser(c, h.userService, h.logger)
	if !ok {
		return
	}

	var req service.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid data")
		return
	}

	course, err := h.scheduleService.Add(c.Request.Context(), user.ID, req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *ScheduleHandler) AddCourses(c *gin.Context) {
	user, ok := currentUser(c, h.userService, h.logger)
	if !ok {
		return
	}

	var req BatchCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid data")
		return
	}

	count, err := h.scheduleService.AddBatch(c.Request.Context(), user.ID, req.Courses, req.ClearBefore)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "count": count})
}

func (h *ScheduleHandler) DeleteCourse(c *gin.Context) {
	user, ok := currentUser(c, h.userService, h.logger)
	if !ok {
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
