package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-chat-service/internal/realtime"
	"campus-chat-service/internal/service"
)

// EventDispatcher routes a domain event to connected sockets.
type EventDispatcher interface {
	Dispatch(ev realtime.Event) int
}

type MessageHandler struct {
	messageService service.MessageService
	dispatcher     EventDispatcher
	logger         *zap.Logger
}

func NewMessageHandler(messageService service.MessageService, dispatcher EventDispatcher, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		dispatcher:     dispatcher,
		logger:         logger,
	}
}

// GetMessages returns one page of history, oldest first.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultMessagePageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.messageService.List(c.Request.Context(), c.Param("groupId"), limit, offset)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SendMessage persists a message and fans it out like the socket path does.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.messageService.CreateMessage(c.Request.Context(), service.CreateMessageInput{
		Text:    req.Text,
		UserID:  req.UserID,
		GroupID: req.GroupID,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(realtime.Event{
			Kind:    realtime.MessageCreated,
			Room:    msg.GroupID.String(),
			Payload: msg,
		})
	}
	c.JSON(http.StatusCreated, msg)
}
