package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	FindByUIDFunc   func(ctx context.Context, uid string) (*domain.User, error)
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpsertFunc      func(ctx context.Context, user *domain.User) (*domain.User, error)
	SetPresenceFunc func(ctx context.Context, uid string, online bool, lastSeen *time.Time) (*domain.User, error)
	ListMembersFunc func(ctx context.Context, groupID uuid.UUID) ([]domain.GroupMember, error)
}

func (m *MockUserRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	if m.FindByUIDFunc != nil {
		return m.FindByUIDFunc(ctx, uid)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, user)
	}
	return user, nil
}

func (m *MockUserRepository) SetPresence(ctx context.Context, uid string, online bool, lastSeen *time.Time) (*domain.User, error) {
	if m.SetPresenceFunc != nil {
		return m.SetPresenceFunc(ctx, uid, online, lastSeen)
	}
	return nil, nil
}

func (m *MockUserRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]domain.GroupMember, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, groupID)
	}
	return nil, nil
}

// MockGroupRepository is a mock implementation of GroupRepository
type MockGroupRepository struct {
	CreateFunc                   func(ctx context.Context, group *domain.Group) error
	FindByIDFunc                 func(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	FindByDepartmentAndClassFunc func(ctx context.Context, department string, classLevel int) (*domain.Group, error)
	FindOrCreateFunc             func(ctx context.Context, department string, classLevel int) (*domain.Group, error)
	ListWithCountsFunc           func(ctx context.Context) ([]domain.GroupSummary, error)
	CountsFunc                   func(ctx context.Context, id uuid.UUID) (domain.GroupCounts, error)
}

func (m *MockGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, group)
	}
	return nil
}

func (m *MockGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockGroupRepository) FindByDepartmentAndClass(ctx context.Context, department string, classLevel int) (*domain.Group, error) {
	if m.FindByDepartmentAndClassFunc != nil {
		return m.FindByDepartmentAndClassFunc(ctx, department, classLevel)
	}
	return nil, nil
}

func (m *MockGroupRepository) FindOrCreate(ctx context.Context, department string, classLevel int) (*domain.Group, error) {
	if m.FindOrCreateFunc != nil {
		return m.FindOrCreateFunc(ctx, department, classLevel)
	}
	return nil, nil
}

func (m *MockGroupRepository) ListWithCounts(ctx context.Context) ([]domain.GroupSummary, error) {
	if m.ListWithCountsFunc != nil {
		return m.ListWithCountsFunc(ctx)
	}
	return nil, nil
}

func (m *MockGroupRepository) Counts(ctx context.Context, id uuid.UUID) (domain.GroupCounts, error) {
	if m.CountsFunc != nil {
		return m.CountsFunc(ctx, id)
	}
	return domain.GroupCounts{}, nil
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	CreateFunc       func(ctx context.Context, message *domain.Message) (*domain.Message, error)
	ListByGroupFunc  func(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]domain.Message, error)
	CountByGroupFunc func(ctx context.Context, groupID uuid.UUID) (int64, error)
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	return message, nil
}

func (m *MockMessageRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, groupID, limit, offset)
	}
	return nil, nil
}

func (m *MockMessageRepository) CountByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	if m.CountByGroupFunc != nil {
		return m.CountByGroupFunc(ctx, groupID)
	}
	return 0, nil
}

// MockStatusRepository is a mock implementation of StatusRepository
type MockStatusRepository struct {
	ReplaceFunc       func(ctx context.Context, status *domain.Status) (*domain.Status, error)
	ListActiveFunc    func(ctx context.Context, groupID uuid.UUID, now time.Time) ([]domain.Status, error)
	FindByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Status, error)
	DeleteFunc        func(ctx context.Context, id uuid.UUID) error
	DeleteExpiredFunc func(ctx context.Context, now time.Time) (int64, error)
}

func (m *MockStatusRepository) Replace(ctx context.Context, status *domain.Status) (*domain.Status, error) {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, status)
	}
	return status, nil
}

func (m *MockStatusRepository) ListActive(ctx context.Context, groupID uuid.UUID, now time.Time) ([]domain.Status, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, groupID, now)
	}
	return nil, nil
}

func (m *MockStatusRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Status, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStatusRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockStatusRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, now)
	}
	return 0, nil
}

// MockFileRepository is a mock implementation of FileRepository
type MockFileRepository struct {
	CreateFunc         func(ctx context.Context, file *domain.File) (*domain.File, error)
	FindByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.File, error)
	ListFunc           func(ctx context.Context, filter repository.FileFilter) ([]domain.File, int64, error)
	IncrementLikesFunc func(ctx context.Context, id uuid.UUID) (*domain.File, error)
	DeleteFunc         func(ctx context.Context, id uuid.UUID) error
}

func (m *MockFileRepository) Create(ctx context.Context, file *domain.File) (*domain.File, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, file)
	}
	return file, nil
}

func (m *MockFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockFileRepository) List(ctx context.Context, filter repository.FileFilter) ([]domain.File, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *MockFileRepository) IncrementLikes(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	if m.IncrementLikesFunc != nil {
		return m.IncrementLikesFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCourseRepository is a mock implementation of CourseRepository
type MockCourseRepository struct {
	ListByUserFunc      func(ctx context.Context, userID uuid.UUID) ([]domain.Course, error)
	CreateFunc          func(ctx context.Context, course *domain.Course) error
	CreateBatchFunc     func(ctx context.Context, userID uuid.UUID, courses []domain.Course, clearBefore bool) error
	FindByIDAndUserFunc func(ctx context.Context, id, userID uuid.UUID) (*domain.Course, error)
	DeleteFunc          func(ctx context.Context, id uuid.UUID) error
}

func (m *MockCourseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Course, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, course)
	}
	return nil
}

func (m *MockCourseRepository) CreateBatch(ctx context.Context, userID uuid.UUID, courses []domain.Course, clearBefore bool) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, userID, courses, clearBefore)
	}
	return nil
}

func (m *MockCourseRepository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Course, error) {
	if m.FindByIDAndUserFunc != nil {
		return m.FindByIDAndUserFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockCourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockContentStore is a mock implementation of client.ContentStore
type MockContentStore struct {
	GenerateKeyFunc func(folder, originalName string) string
	UploadFunc      func(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	DeleteFunc      func(ctx context.Context, key string) error
	PublicURLFunc   func(key string) string
	KeyFromURLFunc  func(fileURL string) string
}

func (m *MockContentStore) GenerateKey(folder, originalName string) string {
	if m.GenerateKeyFunc != nil {
		return m.GenerateKeyFunc(folder, originalName)
	}
	return folder + "/" + originalName
}

func (m *MockContentStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, body, contentType)
	}
	return "https://cdn.test/" + key, nil
}

func (m *MockContentStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *MockContentStore) PublicURL(key string) string {
	if m.PublicURLFunc != nil {
		return m.PublicURLFunc(key)
	}
	return "https://cdn.test/" + key
}

func (m *MockContentStore) KeyFromURL(fileURL string) string {
	if m.KeyFromURLFunc != nil {
		return m.KeyFromURLFunc(fileURL)
	}
	return fileURL
}
