package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
)

// CourseRepository defines data access for schedule entries.
type CourseRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Course, error)
	Create(ctx context.Context, course *domain.Course) error
	CreateBatch(ctx context.Context, userID uuid.UUID, courses []domain.Course, clearBefore bool) error
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseRepositoryImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepositoryImpl{db: db}
}

func (r *courseRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Course, error) {
	var courses []domain.Course
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepositoryImpl) Create(ctx context.Context, course *domain.Course) error {
	return r.db.WithContext(ctx).Omit("User").Create(course).Error
}

// CreateBatch inserts courses for userID in one transaction, optionally clearing
// the user's existing schedule first.
func (r *courseRepositoryImpl) CreateBatch(ctx context.Context, userID uuid.UUID, courses []domain.Course, clearBefore bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clearBefore {
			if err := tx.Where("user_id = ?", userID).Delete(&domain.Course{}).Error; err != nil {
				return err
			}
		}
		for i := range courses {
			courses[i].UserID = userID
			if err := tx.Omit("User").Create(&courses[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *courseRepositoryImpl) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Course, error) {
	var course domain.Course
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Course{}).Error
}
