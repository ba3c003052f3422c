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

// GroupService exposes group listing, creation and lookups used by realtime joins.
type GroupService interface {
	List(ctx context.Context) ([]domain.GroupSummary, error)
	Get(ctx context.Context, id string) (*domain.GroupDetail, error)
	Create(ctx context.Context, department string, classLevel int) (*domain.Group, error)
	FindGroup(ctx context.Context, id string) (*domain.Group, error)
}

type groupServiceImpl struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	logger    *zap.Logger
}

func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, logger *zap.Logger) GroupService {
	return &groupServiceImpl{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

func (s *groupServiceImpl) List(ctx context.Context) ([]domain.GroupSummary, error) {
	groups, err := s.groupRepo.ListWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Get returns the group with its members and message/file counts.
func (s *groupServiceImpl) Get(ctx context.Context, id string) (*domain.GroupDetail, error) {
	group, err := s.FindGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	members, err := s.userRepo.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	counts, err := s.groupRepo.Counts(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("count group: %w", err)
	}

	return &domain.GroupDetail{
		Group:   *group,
		Members: members,
		Count:   domain.GroupCounts{Messages: counts.Messages, Files: counts.Files},
	}, nil
}

// Create inserts a new cohort group. An existing one is reported through GroupExistsError.
func (s *groupServiceImpl) Create(ctx context.Context, department string, classLevel int) (*domain.Group, error) {
	department = strings.TrimSpace(department)
	if department == "" || classLevel <= 0 {
		return nil, newValidationError("Missing required fields")
	}

	existing, err := s.groupRepo.FindByDepartmentAndClass(ctx, department, classLevel)
	if err == nil {
		return nil, &GroupExistsError{Existing: existing}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find group: %w", err)
	}

	group := &domain.Group{Department: department, ClassLevel: classLevel}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	s.logger.Info("Group created",
		zap.String("group_id", group.ID.String()),
		zap.String("department", department),
		zap.Int("class_level", classLevel),
	)
	return group, nil
}

// FindGroup resolves a room id to its group. Malformed ids are reported as not found.
func (s *groupServiceImpl) FindGroup(ctx context.Context, id string) (*domain.Group, error) {
	groupID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrGroupNotFound
	}
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return group, nil
}
