package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/repository"
)

type CourseInput struct {
	Name      string  `json:"name"`
	Day       string  `json:"day"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Classroom *string `json:"classroom"`
	Color     *string `json:"color"`
}

func (c CourseInput) validate() error {
	if strings.TrimSpace(c.Name) == "" || c.Day == "" || c.StartTime == "" || c.EndTime == "" {
		return newValidationError("Invalid data")
	}
	return nil
}

func (c CourseInput) toDomain() domain.Course {
	return domain.Course{
		Name:      c.Name,
		Day:       c.Day,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Classroom: c.Classroom,
		Color:     c.Color,
	}
}

// ScheduleService manages the weekly schedule of the authenticated user.
type ScheduleService interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.Course, error)
	Add(ctx context.Context, userID uuid.UUID, in CourseInput) (*domain.Course, error)
	AddBatch(ctx context.Context, userID uuid.UUID, in []CourseInput, clearBefore bool) (int, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

type scheduleServiceImpl struct {
	courseRepo repository.CourseRepository
	logger     *zap.Logger
}

func NewScheduleService(courseRepo repository.CourseRepository, logger *zap.Logger) ScheduleService {
	return &scheduleServiceImpl{courseRepo: courseRepo, logger: logger}
}

func (s *scheduleServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.Course, error) {
	courses, err := s.courseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *scheduleServiceImpl) Add(ctx context.Context, userID uuid.UUID, in CourseInput) (*domain.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	course := in.toDomain()
	course.UserID = userID
	if err := s.courseRepo.Create(ctx, &course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return &course, nil
}

// AddBatch validates every course before writing any of them.
func (s *scheduleServiceImpl) AddBatch(ctx context.Context, userID uuid.UUID, in []CourseInput, clearBefore bool) (int, error) {
	courses := make([]domain.Course, 0, len(in))
	for _, c := range in {
		if err := c.validate(); err != nil {
			return 0, err
		}
		courses = append(courses, c.toDomain())
	}
	if err := s.courseRepo.CreateBatch(ctx, userID, courses, clearBefore); err != nil {
		return 0, fmt.Errorf("create courses: %w", err)
	}
	s.logger.Info("Schedule batch stored",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(courses)),
		zap.Bool("clear_before", clearBefore),
	)
	return len(courses), nil
}

func (s *scheduleServiceImpl) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	courseID, err := uuid.Parse(id)
	if err != nil {
		return ErrCourseNotFound
	}
	if _, err := s.courseRepo.FindByIDAndUser(ctx, courseID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("find course: %w", err)
	}
	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
