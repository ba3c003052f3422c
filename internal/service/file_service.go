package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-chat-service/internal/client"
	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/metrics"
	"campus-chat-service/internal/repository"
)

const DefaultFilePageSize = 50

var ErrStorageUnavailable = errors.New("content store is not configured")

type FileListQuery struct {
	GroupID  string
	FileType string
	Limit    int
	Offset   int
	SortBy   string
}

type FilePage struct {
	Files  []domain.File `json:"files"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// UploadInput describes one multipart upload. Body is read once.
type UploadInput struct {
	Body       io.Reader
	FileName   string
	Size       int64
	MimeType   string
	UserID     string
	GroupID    string
	MusicTitle *string
	MusicURL   *string
}

// FileService manages shared files and their objects in the content store.
type FileService interface {
	List(ctx context.Context, q FileListQuery) (*FilePage, error)
	Like(ctx context.Context, fileID string) (*domain.File, error)
	Delete(ctx context.Context, fileID string, ownerID uuid.UUID) error
	Upload(ctx context.Context, in UploadInput) (*domain.File, error)
}

type fileServiceImpl struct {
	fileRepo repository.FileRepository
	groups   GroupService
	store    client.ContentStore
	maxBytes int64
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewFileService(
	fileRepo repository.FileRepository,
	groups GroupService,
	store client.ContentStore,
	maxBytes int64,
	m *metrics.Metrics,
	logger *zap.Logger,
) FileService {
	return &fileServiceImpl{
		fileRepo: fileRepo,
		groups:   groups,
		store:    store,
		maxBytes: maxBytes,
		metrics:  m,
		logger:   logger,
	}
}

func (s *fileServiceImpl) List(ctx context.Context, q FileListQuery) (*FilePage, error) {
	group, err := s.groups.FindGroup(ctx, q.GroupID)
	if err != nil {
		return nil, err
	}

	if q.Limit <= 0 {
		q.Limit = DefaultFilePageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	fileType := domain.FileType(q.FileType)
	if fileType != "" && !fileType.Valid() {
		return nil, newValidationError("Invalid fileType")
	}
	sortBy := repository.FileSortRecent
	if q.SortBy == string(repository.FileSortLikes) {
		sortBy = repository.FileSortLikes
	}

	files, total, err := s.fileRepo.List(ctx, repository.FileFilter{
		GroupID:  group.ID,
		FileType: fileType,
		Limit:    q.Limit,
		Offset:   q.Offset,
		SortBy:   sortBy,
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return &FilePage{Files: files, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *fileServiceImpl) Like(ctx context.Context, fileID string) (*domain.File, error) {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return nil, ErrFileNotFound
	}
	file, err := s.fileRepo.IncrementLikes(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("like file: %w", err)
	}
	return file, nil
}

// Delete removes an owned file. A content store failure is logged and the row is
// deleted anyway.
func (s *fileServiceImpl) Delete(ctx context.Context, fileID string, ownerID uuid.UUID) error {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return ErrFileNotFound
	}
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("find file: %w", err)
	}
	if file.UserID != ownerID {
		return ErrForbidden
	}

	if s.store != nil {
		key := s.store.KeyFromURL(file.FileURL)
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete object from content store",
				zap.String("file_id", fileID),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// Upload stores the object under its type folder and records its metadata.
func (s *fileServiceImpl) Upload(ctx context.Context, in UploadInput) (*domain.File, error) {
	if in.Body == nil {
		return nil, newValidationError("No file uploaded")
	}
	if in.UserID == "" || in.GroupID == "" {
		return nil, newValidationError("Missing required fields: userId, groupId")
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, newValidationError(fmt.Sprintf("File size exceeds %dMB limit", s.maxBytes/(1024*1024)))
	}
	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, newValidationError("Invalid userId")
	}
	groupID, err := uuid.Parse(in.GroupID)
	if err != nil {
		return nil, newValidationError("Invalid groupId")
	}
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	fileType := domain.FileTypeFromMIME(in.MimeType)
	key := s.store.GenerateKey(fileType.Folder(), in.FileName)
	fileURL, err := s.store.Upload(ctx, key, in.Body, in.MimeType)
	if err != nil {
		return nil, fmt.Errorf("upload object: %w", err)
	}

	file, err := s.fileRepo.Create(ctx, &domain.File{
		FileName:   in.FileName,
		FileType:   fileType,
		FileURL:    fileURL,
		FileSize:   in.Size,
		MimeType:   in.MimeType,
		MusicTitle: nonEmpty(in.MusicTitle),
		MusicURL:   nonEmpty(in.MusicURL),
		UserID:     userID,
		GroupID:    groupID,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned object",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("save file metadata: %w", err)
	}

	s.metrics.RecordUpload(string(fileType))
	s.logger.Info("File uploaded",
		zap.String("file_id", file.ID.String()),
		zap.String("key", key),
		zap.Int64("size", in.Size),
	)
	return file, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
