package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
)

// GroupRepository defines data access for groups.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	FindByDepartmentAndClass(ctx context.Context, department string, classLevel int) (*domain.Group, error)
	FindOrCreate(ctx context.Context, department string, classLevel int) (*domain.Group, error)
	ListWithCounts(ctx context.Context) ([]domain.GroupSummary, error)
	Counts(ctx context.Context, id uuid.UUID) (domain.GroupCounts, error)
}

type groupRepositoryImpl struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepositoryImpl{db: db}
}

func (r *groupRepositoryImpl) Create(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	var group domain.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepositoryImpl) FindByDepartmentAndClass(ctx context.Context, department string, classLevel int) (*domain.Group, error) {
	var group domain.Group
	if err := r.db.WithContext(ctx).
		Where("department = ? AND class_level = ?", department, classLevel).
		First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// FindOrCreate returns the group for (department, classLevel), creating it when missing.
func (r *groupRepositoryImpl) FindOrCreate(ctx context.Context, department string, classLevel int) (*domain.Group, error) {
	group := domain.Group{Department: department, ClassLevel: classLevel}
	if err := r.db.WithContext(ctx).
		Where("department = ? AND class_level = ?", department, classLevel).
		FirstOrCreate(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

type groupCountRow struct {
	GroupID uuid.UUID
	Total   int64
}

func (r *groupRepositoryImpl) ListWithCounts(ctx context.Context) ([]domain.GroupSummary, error) {
	var groups []domain.Group
	if err := r.db.WithContext(ctx).
		Order("department ASC").
		Order("class_level ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}

	members, err := r.countBy(ctx, &domain.User{}, "group_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	messages, err := r.countBy(ctx, &domain.Message{}, "")
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.GroupSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, domain.GroupSummary{
			Group: g,
			Count: domain.GroupCounts{
				Members:  members[g.ID],
				Messages: messages[g.ID],
			},
		})
	}
	return summaries, nil
}

func (r *groupRepositoryImpl) countBy(ctx context.Context, model interface{}, cond string) (map[uuid.UUID]int64, error) {
	var rows []groupCountRow
	q := r.db.WithContext(ctx).Model(model).Select("group_id, COUNT(*) AS total")
	if cond != "" {
		q = q.Where(cond)
	}
	if err := q.Group("group_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.GroupID] = row.Total
	}
	return out, nil
}

func (r *groupRepositoryImpl) Counts(ctx context.Context, id uuid.UUID) (domain.GroupCounts, error) {
	var counts domain.GroupCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.User{}).Where("group_id = ?", id).Count(&counts.Members).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&domain.Message{}).Where("group_id = ?", id).Count(&counts.Messages).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&domain.File{}).Where("group_id = ?", id).Count(&counts.Files).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
