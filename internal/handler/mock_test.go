package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/realtime"
	"campus-chat-service/internal/service"
)

type MockUserService struct {
	SyncUserFunc      func(ctx context.Context, in service.SyncUserInput) (*service.SyncUserResult, error)
	GetByUIDFunc      func(ctx context.Context, uid string) (*domain.User, error)
	FindBySubjectFunc func(ctx context.Context, uid string) (*domain.User, error)
}

func (m *MockUserService) SyncUser(ctx context.Context, in service.SyncUserInput) (*service.SyncUserResult, error) {
	if m.SyncUserFunc != nil {
		return m.SyncUserFunc(ctx, in)
	}
	return &service.SyncUserResult{}, nil
}

func (m *MockUserService) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	if m.GetByUIDFunc != nil {
		return m.GetByUIDFunc(ctx, uid)
	}
	return nil, service.ErrUserNotFound
}

func (m *MockUserService) FindBySubject(ctx context.Context, uid string) (*domain.User, error) {
	if m.FindBySubjectFunc != nil {
		return m.FindBySubjectFunc(ctx, uid)
	}
	return nil, service.ErrUserNotFound
}

func (m *MockUserService) SetOnline(ctx context.Context, uid string) (*domain.User, error) {
	return nil, nil
}

func (m *MockUserService) SetOffline(ctx context.Context, uid string, lastSeen time.Time) (*domain.User, error) {
	return nil, nil
}

type MockGroupService struct {
	ListFunc      func(ctx context.Context) ([]domain.GroupSummary, error)
	GetFunc       func(ctx context.Context, id string) (*domain.GroupDetail, error)
	CreateFunc    func(ctx context.Context, department string, classLevel int) (*domain.Group, error)
	FindGroupFunc func(ctx context.Context, id string) (*domain.Group, error)
}

func (m *MockGroupService) List(ctx context.Context) ([]domain.GroupSummary, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.GroupSummary{}, nil
}

func (m *MockGroupService) Get(ctx context.Context, id string) (*domain.GroupDetail, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, service.ErrGroupNotFound
}

func (m *MockGroupService) Create(ctx context.Context, department string, classLevel int) (*domain.Group, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, department, classLevel)
	}
	return &domain.Group{Department: department, ClassLevel: classLevel}, nil
}

func (m *MockGroupService) FindGroup(ctx context.Context, id string) (*domain.Group, error) {
	if m.FindGroupFunc != nil {
		return m.FindGroupFunc(ctx, id)
	}
	return nil, service.ErrGroupNotFound
}

type MockMessageService struct {
	ListFunc          func(ctx context.Context, groupID string, limit, offset int) (*service.MessagePage, error)
	CreateMessageFunc func(ctx context.Context, in service.CreateMessageInput) (*domain.Message, error)
}

func (m *MockMessageService) List(ctx context.Context, groupID string, limit, offset int) (*service.MessagePage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, groupID, limit, offset)
	}
	return &service.MessagePage{Messages: []domain.Message{}, Limit: limit, Offset: offset}, nil
}

func (m *MockMessageService) CreateMessage(ctx context.Context, in service.CreateMessageInput) (*domain.Message, error) {
	if m.CreateMessageFunc != nil {
		return m.CreateMessageFunc(ctx, in)
	}
	return nil, service.ErrGroupNotFound
}

type MockStatusService struct {
	ListActiveFunc     func(ctx context.Context, groupID string) ([]domain.Status, error)
	CreateFunc         func(ctx context.Context, in service.CreateStatusInput) (*domain.Status, error)
	DeleteFunc         func(ctx context.Context, id string, ownerID uuid.UUID) error
	CleanupExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *MockStatusService) ListActive(ctx context.Context, groupID string) ([]domain.Status, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, groupID)
	}
	return []domain.Status{}, nil
}

func (m *MockStatusService) Create(ctx context.Context, in service.CreateStatusInput) (*domain.Status, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &domain.Status{}, nil
}

func (m *MockStatusService) Delete(ctx context.Context, id string, ownerID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, ownerID)
	}
	return nil
}

func (m *MockStatusService) CleanupExpired(ctx context.Context) (int64, error) {
	if m.CleanupExpiredFunc != nil {
		return m.CleanupExpiredFunc(ctx)
	}
	return 0, nil
}

type MockFileService struct {
	ListFunc   func(ctx context.Context, q service.FileListQuery) (*service.FilePage, error)
	LikeFunc   func(ctx context.Context, fileID string) (*domain.File, error)
	DeleteFunc func(ctx context.Context, fileID string, ownerID uuid.UUID) error
	UploadFunc func(ctx context.Context, in service.UploadInput) (*domain.File, error)
}

func (m *MockFileService) List(ctx context.Context, q service.FileListQuery) (*service.FilePage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return &service.FilePage{Files: []domain.File{}}, nil
}

func (m *MockFileService) Like(ctx context.Context, fileID string) (*domain.File, error) {
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, fileID)
	}
	return nil, service.ErrFileNotFound
}

func (m *MockFileService) Delete(ctx context.Context, fileID string, ownerID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, fileID, ownerID)
	}
	return nil
}

func (m *MockFileService) Upload(ctx context.Context, in service.UploadInput) (*domain.File, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, in)
	}
	return &domain.File{}, nil
}

type MockScheduleService struct {
	ListFunc     func(ctx context.Context, userID uuid.UUID) ([]domain.Course, error)
	AddFunc      func(ctx context.Context, userID uuid.UUID, in service.CourseInput) (*domain.Course, error)
	AddBatchFunc func(ctx context.Context, userID uuid.UUID, in []service.CourseInput, clearBefore bool) (int, error)
	DeleteFunc   func(ctx context.Context, userID uuid.UUID, id string) error
}

func (m *MockScheduleService) List(ctx context.Context, userID uuid.UUID) ([]domain.Course, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return []domain.Course{}, nil
}

func (m *MockScheduleService) Add(ctx context.Context, userID uuid.UUID, in service.CourseInput) (*domain.Course, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, userID, in)
	}
	return &domain.Course{UserID: userID, Name: in.Name}, nil
}

func (m *MockScheduleService) AddBatch(ctx context.Context, userID uuid.UUID, in []service.CourseInput, clearBefore bool) (int, error) {
	if m.AddBatchFunc != nil {
		return m.AddBatchFunc(ctx, userID, in, clearBefore)
	}
	return len(in), nil
}

func (m *MockScheduleService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

type MockPresenceCache struct {
	OnlineUsersFunc func(ctx context.Context, groupID string) ([]string, error)
}

func (m *MockPresenceCache) SetOnline(ctx context.Context, groupID, userID string) error {
	return nil
}

func (m *MockPresenceCache) SetOffline(ctx context.Context, groupID, userID string) error {
	return nil
}

func (m *MockPresenceCache) OnlineUsers(ctx context.Context, groupID string) ([]string, error) {
	if m.OnlineUsersFunc != nil {
		return m.OnlineUsersFunc(ctx, groupID)
	}
	return []string{}, nil
}

type recordingDispatcher struct {
	events []realtime.Event
}

func (d *recordingDispatcher) Dispatch(ev realtime.Event) int {
	d.events = append(d.events, ev)
	return 0
}

type stubOnline map[string][]string

func (s stubOnline) OnlineUsers(groupID string) []string {
	return s[groupID]
}
