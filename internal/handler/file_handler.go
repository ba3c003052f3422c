package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-chat-service/internal/service"
)

type FileHandler struct {
	fileService service.FileService
	userService service.UserService
	logger      *zap.Logger
}

func NewFileHandler(fileService service.FileService, userService service.UserService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		userService: userService,
		logger:      logger,
	}
}

func (h *FileHandler) ListFiles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultFilePageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.fileService.List(c.Request.Context(), service.FileListQuery{
		GroupID:  c.Param("groupId"),
		FileType: c.Query("fileType"),
		Limit:    limit,
		Offset:   offset,
		SortBy:   c.DefaultQuery("sortBy", "recent"),
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *FileHandler) LikeFile(c *gin.Context) {
	file, err := h.fileService.Like(c.Request.Context(), c.Param("fileId"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	user, ok := currentUser(c, h.userService, h.logger)
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), c.Param("fileId"), user.ID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Upload stores a multipart "file" field and records its metadata.
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	body, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", zap.Error(err))
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer body.Close()

	file, err := h.fileService.Upload(c.Request.Context(), service.UploadInput{
		Body:       body,
		FileName:   header.Filename,
		Size:       header.Size,
		MimeType:   header.Header.Get("Content-Type"),
		UserID:     c.PostForm("userId"),
		GroupID:    c.PostForm("groupId"),
		MusicTitle: optionalForm(c, "musicTitle"),
		MusicURL:   optionalForm(c, "musicUrl"),
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func optionalForm(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok || v == "" {
		return nil
	}
	return &v
}
