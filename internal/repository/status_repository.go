package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
)

// StatusRepository defines data access for ephemeral statuses.
type StatusRepository interface {
	Replace(ctx context.Context, status *domain.Status) (*domain.Status, error)
	ListActive(ctx context.Context, groupID uuid.UUID, now time.Time) ([]domain.Status, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Status, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type statusRepositoryImpl struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepositoryImpl{db: db}
}

// Replace removes the user's previous status in the group and stores the new one
// in a single transaction.
func (r *statusRepositoryImpl) Replace(ctx context.Context, status *domain.Status) (*domain.Status, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND group_id = ?", status.UserID, status.GroupID).
			Delete(&domain.Status{}).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(status).Error
	})
	if err != nil {
		return nil, err
	}

	var created domain.Status
	if err := r.db.WithContext(ctx).
		Scopes(withAuthor).
		Where("id = ?", status.ID).
		First(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *statusRepositoryImpl) ListActive(ctx context.Context, groupID uuid.UUID, now time.Time) ([]domain.Status, error) {
	var statuses []domain.Status
	if err := r.db.WithContext(ctx).
		Scopes(withAuthor).
		Where("group_id = ? AND expires_at > ?", groupID, now).
		Order("created_at DESC").
		Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *statusRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Status, error) {
	var status domain.Status
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Status{}).Error
}

// DeleteExpired removes every status whose expiry is not after now.
func (r *statusRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Status{})
	return result.RowsAffected, result.Error
}
