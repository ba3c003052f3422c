package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
)

// MessageRepository defines data access for group messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]domain.Message, error)
	CountByGroup(ctx context.Context, groupID uuid.UUID) (int64, error)
}

type messageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User")
}

// Create persists the message and returns it reloaded with its author.
func (r *messageRepositoryImpl) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.db.WithContext(ctx).Omit("User").Create(message).Error; err != nil {
		return nil, err
	}

	var created domain.Message
	if err := r.db.WithContext(ctx).
		Scopes(withAuthor).
		Where("id = ?", message.ID).
		First(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// ListByGroup returns one page of a group's messages, newest first.
func (r *messageRepositoryImpl) ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	var messages []domain.Message
	if err := r.db.WithContext(ctx).
		Scopes(withAuthor).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepositoryImpl) CountByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("group_id = ?", groupID).Count(&total).Error
	return total, err
}
