package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
)

func TestGroupService_FindGroup(t *testing.T) {
	existing := uuid.New()
	dbErr := errors.New("db down")

	groupRepo := &MockGroupRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
			switch id {
			case existing:
				g := &domain.Group{Department: "CS", ClassLevel: 1}
				g.ID = id
				return g, nil
			case uuid.Nil:
				return nil, dbErr
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewGroupService(groupRepo, &MockUserRepository{}, zap.NewNop())

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "existing group", id: existing.String()},
		{name: "malformed id", id: "xyz", wantErr: ErrGroupNotFound},
		{name: "unknown id", id: uuid.NewString(), wantErr: ErrGroupNotFound},
		{name: "store failure", id: uuid.Nil.String(), wantErr: dbErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, err := svc.FindGroup(context.Background(), tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, group)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "CS", group.Department)
		})
	}
}

func TestGroupService_Create(t *testing.T) {
	existing := &domain.Group{Department: "CS", ClassLevel: 1}
	existing.ID = uuid.New()

	groupRepo := &MockGroupRepository{
		FindByDepartmentAndClassFunc: func(ctx context.Context, department string, classLevel int) (*domain.Group, error) {
			if department == "CS" && classLevel == 1 {
				return existing, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewGroupService(groupRepo, &MockUserRepository{}, zap.NewNop())

	t.Run("conflict returns the existing group", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "CS", 1)
		require.ErrorIs(t, err, ErrGroupExists)
		var exists *GroupExistsError
		require.ErrorAs(t, err, &exists)
		assert.Equal(t, existing.ID, exists.Existing.ID)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Create(context.Background(), " ", 1)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("created", func(t *testing.T) {
		group, err := svc.Create(context.Background(), "EE", 3)
		require.NoError(t, err)
		assert.Equal(t, "EE", group.Department)
		assert.Equal(t, 3, group.ClassLevel)
	})
}

func TestGroupService_Get(t *testing.T) {
	groupID := uuid.New()
	groupRepo := &MockGroupRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
			g := &domain.Group{Department: "CS", ClassLevel: 1}
			g.ID = id
			return g, nil
		},
		CountsFunc: func(ctx context.Context, id uuid.UUID) (domain.GroupCounts, error) {
			return domain.GroupCounts{Members: 2, Messages: 7, Files: 1}, nil
		},
	}
	userRepo := &MockUserRepository{
		ListMembersFunc: func(ctx context.Context, id uuid.UUID) ([]domain.GroupMember, error) {
			return []domain.GroupMember{{UID: "a"}, {UID: "b"}}, nil
		},
	}
	svc := NewGroupService(groupRepo, userRepo, zap.NewNop())

	detail, err := svc.Get(context.Background(), groupID.String())
	require.NoError(t, err)
	assert.Len(t, detail.Members, 2)
	assert.Equal(t, int64(7), detail.Count.Messages)
	assert.Equal(t, int64(1), detail.Count.Files)
	assert.Equal(t, int64(0), detail.Count.Members)
}
