package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/repository"
)

// SyncUserInput is the profile pushed by the client after sign-in.
type SyncUserInput struct {
	UID        string
	Email      string
	Name       string
	PhotoURL   *string
	Department string
	ClassLevel int
	StudentNo  *string
}

type SyncUserResult struct {
	User  *domain.User  `json:"user"`
	Group *domain.Group `json:"group"`
}

// UserService manages user records and their durable presence flags.
type UserService interface {
	SyncUser(ctx context.Context, in SyncUserInput) (*SyncUserResult, error)
	GetByUID(ctx context.Context, uid string) (*domain.User, error)
	FindBySubject(ctx context.Context, uid string) (*domain.User, error)
	SetOnline(ctx context.Context, uid string) (*domain.User, error)
	SetOffline(ctx context.Context, uid string, lastSeen time.Time) (*domain.User, error)
}

type userServiceImpl struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	logger    *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, groupRepo repository.GroupRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		logger:    logger,
	}
}

// SyncUser finds or creates the cohort group and upserts the user into it.
func (s *userServiceImpl) SyncUser(ctx context.Context, in SyncUserInput) (*SyncUserResult, error) {
	in.UID = strings.TrimSpace(in.UID)
	in.Department = strings.TrimSpace(in.Department)
	if in.UID == "" || in.Email == "" || in.Name == "" || in.Department == "" || in.ClassLevel <= 0 {
		return nil, newValidationError("Missing required fields")
	}

	group, err := s.groupRepo.FindOrCreate(ctx, in.Department, in.ClassLevel)
	if err != nil {
		return nil, fmt.Errorf("find or create group: %w", err)
	}

	user, err := s.userRepo.Upsert(ctx, &domain.User{
		UID:        in.UID,
		Email:      in.Email,
		Name:       in.Name,
		PhotoURL:   in.PhotoURL,
		Department: in.Department,
		ClassLevel: in.ClassLevel,
		StudentNo:  in.StudentNo,
		GroupID:    &group.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	s.logger.Info("User synced",
		zap.String("uid", user.UID),
		zap.String("group_id", group.ID.String()),
	)
	return &SyncUserResult{User: user, Group: group}, nil
}

func (s *userServiceImpl) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// FindBySubject is GetByUID for callers resolving an authenticated subject.
func (s *userServiceImpl) FindBySubject(ctx context.Context, uid string) (*domain.User, error) {
	return s.GetByUID(ctx, uid)
}

// SetOnline marks the user online and returns it with its group loaded.
func (s *userServiceImpl) SetOnline(ctx context.Context, uid string) (*domain.User, error) {
	user, err := s.userRepo.SetPresence(ctx, uid, true, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("set online: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) SetOffline(ctx context.Context, uid string, lastSeen time.Time) (*domain.User, error) {
	user, err := s.userRepo.SetPresence(ctx, uid, false, &lastSeen)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("set offline: %w", err)
	}
	return user, nil
}
