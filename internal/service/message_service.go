package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/metrics"
	"campus-chat-service/internal/repository"
)

const (
	DefaultMessagePageSize = 50
	MaxMessagePageSize     = 200
)

// MessagePage is one page of a group's history, oldest first.
type MessagePage struct {
	Messages []domain.Message `json:"messages"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// CreateMessageInput is the unvalidated payload of send_message and POST /messages.
type CreateMessageInput struct {
	Text    string
	UserID  string
	GroupID string
}

type MessageService interface {
	List(ctx context.Context, groupID string, limit, offset int) (*MessagePage, error)
	CreateMessage(ctx context.Context, in CreateMessageInput) (*domain.Message, error)
}

type messageServiceImpl struct {
	messageRepo repository.MessageRepository
	groups      GroupService
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, groups GroupService, m *metrics.Metrics, logger *zap.Logger) MessageService {
	return &messageServiceImpl{
		messageRepo: messageRepo,
		groups:      groups,
		metrics:     m,
		logger:      logger,
	}
}

// List returns the newest page of messages reversed into chronological order.
func (s *messageServiceImpl) List(ctx context.Context, groupID string, limit, offset int) (*MessagePage, error) {
	group, err := s.groups.FindGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultMessagePageSize
	}
	if limit > MaxMessagePageSize {
		limit = MaxMessagePageSize
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.messageRepo.ListByGroup(ctx, group.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	total, err := s.messageRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	return &MessagePage{Messages: messages, Total: total, Limit: limit, Offset: offset}, nil
}

// CreateMessage validates and persists a message, returning it with its author.
func (s *messageServiceImpl) CreateMessage(ctx context.Context, in CreateMessageInput) (*domain.Message, error) {
	if strings.TrimSpace(in.Text) == "" || in.UserID == "" || in.GroupID == "" {
		return nil, newValidationError("Missing required fields")
	}
	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, newValidationError("Invalid userId")
	}
	groupID, err := uuid.Parse(in.GroupID)
	if err != nil {
		return nil, newValidationError("Invalid groupId")
	}

	msg, err := s.messageRepo.Create(ctx, &domain.Message{
		Text:    in.Text,
		UserID:  userID,
		GroupID: groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.metrics.RecordMessageSent()
	s.logger.Debug("Message stored",
		zap.String("message_id", msg.ID.String()),
		zap.String("group_id", groupID.String()),
	)
	return msg, nil
}
