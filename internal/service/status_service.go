package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/metrics"
	"campus-chat-service/internal/repository"
)

type CreateStatusInput struct {
	UserID  string
	GroupID string
	Text    *string
	Music   json.RawMessage
}

// StatusService manages the one-per-group ephemeral statuses.
type StatusService interface {
	ListActive(ctx context.Context, groupID string) ([]domain.Status, error)
	Create(ctx context.Context, in CreateStatusInput) (*domain.Status, error)
	Delete(ctx context.Context, id string, ownerID uuid.UUID) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type statusServiceImpl struct {
	statusRepo repository.StatusRepository
	clock      clock.Clock
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewStatusService(statusRepo repository.StatusRepository, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) StatusService {
	if clk == nil {
		clk = clock.New()
	}
	return &statusServiceImpl{
		statusRepo: statusRepo,
		clock:      clk,
		metrics:    m,
		logger:     logger,
	}
}

func (s *statusServiceImpl) ListActive(ctx context.Context, groupID string) ([]domain.Status, error) {
	id, err := uuid.Parse(groupID)
	if err != nil {
		return nil, ErrGroupNotFound
	}
	statuses, err := s.statusRepo.ListActive(ctx, id, s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	return statuses, nil
}

// Create replaces the user's status in the group with one expiring after StatusLifetime.
func (s *statusServiceImpl) Create(ctx context.Context, in CreateStatusInput) (*domain.Status, error) {
	if in.UserID == "" || in.GroupID == "" {
		return nil, newValidationError("UserId and GroupId are required")
	}
	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, newValidationError("Invalid userId")
	}
	groupID, err := uuid.Parse(in.GroupID)
	if err != nil {
		return nil, newValidationError("Invalid groupId")
	}

	var music datatypes.JSON
	if len(in.Music) > 0 && string(in.Music) != "null" {
		if !json.Valid(in.Music) {
			return nil, newValidationError("Invalid music payload")
		}
		music = datatypes.JSON(in.Music)
	}

	status, err := s.statusRepo.Replace(ctx, &domain.Status{
		UserID:    userID,
		GroupID:   groupID,
		Text:      in.Text,
		Music:     music,
		ExpiresAt: s.clock.Now().UTC().Add(domain.StatusLifetime),
	})
	if err != nil {
		return nil, fmt.Errorf("replace status: %w", err)
	}

	s.metrics.RecordStatusPosted()
	return status, nil
}

// Delete removes a status owned by ownerID.
func (s *statusServiceImpl) Delete(ctx context.Context, id string, ownerID uuid.UUID) error {
	statusID, err := uuid.Parse(id)
	if err != nil {
		return ErrStatusNotFound
	}
	status, err := s.statusRepo.FindByID(ctx, statusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStatusNotFound
		}
		return fmt.Errorf("find status: %w", err)
	}
	if status.UserID != ownerID {
		return ErrForbidden
	}
	if err := s.statusRepo.Delete(ctx, statusID); err != nil {
		return fmt.Errorf("delete status: %w", err)
	}
	return nil
}

// CleanupExpired deletes every status that has passed its expiry.
func (s *statusServiceImpl) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := s.statusRepo.DeleteExpired(ctx, s.clock.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired statuses: %w", err)
	}
	s.metrics.RecordExpiredStatusesDeleted(deleted)
	return deleted, nil
}
