package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-chat-service/internal/domain"
)

// UserRepository defines data access for user records.
type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)
	SetPresence(ctx context.Context, uid string, online bool, lastSeen *time.Time) (*domain.User, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]domain.GroupMember, error)
}

type userRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepositoryImpl{db: db}
}

// FindByUID loads a user by subject id together with its group.
func (r *userRepositoryImpl) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Where("uid = ?", uid).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert inserts the user or updates the profile columns of the existing row with the same uid.
func (r *userRepositoryImpl) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "name", "photo_url", "department", "class_level", "student_no", "group_id", "updated_at",
		}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUID(ctx, user.UID)
}

// SetPresence writes the online flag (and last-seen when given) for uid and
// returns the updated row. A missing user yields gorm.ErrRecordNotFound.
func (r *userRepositoryImpl) SetPresence(ctx context.Context, uid string, online bool, lastSeen *time.Time) (*domain.User, error) {
	updates := map[string]interface{}{"is_online": online}
	if lastSeen != nil {
		updates["last_seen"] = *lastSeen
	}

	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("uid = ?", uid).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByUID(ctx, uid)
}

func (r *userRepositoryImpl) ListMembers(ctx context.Context, groupID uuid.UUID) ([]domain.GroupMember, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).
		Select("id", "uid", "name", "photo_url", "student_no").
		Where("group_id = ?", groupID).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}

	members := make([]domain.GroupMember, 0, len(users))
	for _, u := range users {
		members = append(members, domain.GroupMember{
			ID:        u.ID.String(),
			UID:       u.UID,
			Name:      u.Name,
			PhotoURL:  u.PhotoURL,
			StudentNo: u.StudentNo,
		})
	}
	return members, nil
}
