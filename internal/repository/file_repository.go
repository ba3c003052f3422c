package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
)

// FileSort selects the ordering of a file listing.
type FileSort string

const (
	FileSortRecent FileSort = "recent"
	FileSortLikes  FileSort = "likes"
)

// FileFilter narrows a group's file listing.
type FileFilter struct {
	GroupID  uuid.UUID
	FileType domain.FileType
	Limit    int
	Offset   int
	SortBy   FileSort
}

// FileRepository defines data access for shared files.
type FileRepository interface {
	Create(ctx context.Context, file *domain.File) (*domain.File, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.File, error)
	List(ctx context.Context, filter FileFilter) ([]domain.File, int64, error)
	IncrementLikes(ctx context.Context, id uuid.UUID) (*domain.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type fileRepositoryImpl struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepositoryImpl{db: db}
}

func (r *fileRepositoryImpl) Create(ctx context.Context, file *domain.File) (*domain.File, error) {
	if err := r.db.WithContext(ctx).Omit("User").Create(file).Error; err != nil {
		return nil, err
	}
	return r.findWithAuthor(ctx, file.ID)
}

func (r *fileRepositoryImpl) findWithAuthor(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	var file domain.File
	if err := r.db.WithContext(ctx).
		Scopes(withAuthor).
		Where("id = ?", id).
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	var file domain.File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepositoryImpl) List(ctx context.Context, filter FileFilter) ([]domain.File, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("group_id = ?", filter.GroupID)
		if filter.FileType != "" {
			db = db.Where("file_type = ?", filter.FileType)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.File{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.SortBy == FileSortLikes {
		order = "likes DESC"
	}

	var files []domain.File
	if err := r.db.WithContext(ctx).
		Scopes(scope, withAuthor).
		Order(order).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&files).Error; err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// IncrementLikes atomically bumps the like counter. A missing file yields gorm.ErrRecordNotFound.
func (r *fileRepositoryImpl) IncrementLikes(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.File{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + ?", 1))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *fileRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.File{}).Error
}
