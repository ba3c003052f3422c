package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"campus-chat-service/internal/client"
	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/service"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// recordingSink captures frames; full makes every Send fail.
type recordingSink struct {
	mu     sync.Mutex
	frames []frame
	full   bool
}

func (s *recordingSink) Send(b []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	var f frame
	if err := json.Unmarshal(b, &f); err != nil {
		panic(err)
	}
	s.frames = append(s.frames, f)
	return true
}

func (s *recordingSink) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.frames))
	for _, f := range s.frames {
		names = append(names, f.Event)
	}
	return names
}

func (s *recordingSink) last() frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return frame{}
	}
	return s.frames[len(s.frames)-1]
}

func (s *recordingSink) byEvent(event string) []frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []frame
	for _, f := range s.frames {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	s.frames = nil
	s.mu.Unlock()
}

type fakeVerifier struct {
	tokens map[string]*client.Claims
}

func (v *fakeVerifier) Verify(ctx context.Context, token string) (*client.Claims, error) {
	if c, ok := v.tokens[token]; ok {
		return c, nil
	}
	return nil, client.ErrInvalidToken
}

type presenceWrite struct {
	UID      string
	Online   bool
	LastSeen time.Time
}

type fakeUsers struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	writes     []presenceWrite
	onlineErr  error
	offlineErr error
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*domain.User)}
	for _, u := range users {
		f.users[u.UID] = u
	}
	return f
}

func (f *fakeUsers) get(uid string) (*domain.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetOnline(ctx context.Context, uid string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onlineErr != nil {
		return nil, f.onlineErr
	}
	f.writes = append(f.writes, presenceWrite{UID: uid, Online: true})
	if u, ok := f.users[uid]; ok {
		u.IsOnline = true
	}
	return f.get(uid)
}

func (f *fakeUsers) SetOffline(ctx context.Context, uid string, lastSeen time.Time) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offlineErr != nil {
		return nil, f.offlineErr
	}
	f.writes = append(f.writes, presenceWrite{UID: uid, Online: false, LastSeen: lastSeen})
	if u, ok := f.users[uid]; ok {
		u.IsOnline = false
		u.LastSeen = &lastSeen
	}
	return f.get(uid)
}

func (f *fakeUsers) FindBySubject(ctx context.Context, uid string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(uid)
}

func (f *fakeUsers) offlineWrites() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.writes {
		if !w.Online {
			n++
		}
	}
	return n
}

func (f *fakeUsers) isOnline(uid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	return ok && u.IsOnline
}

type fakeGroups struct {
	groups map[string]*domain.Group
	err    error
}

func (f *fakeGroups) FindGroup(ctx context.Context, id string) (*domain.Group, error) {
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.groups[id]
	if !ok {
		return nil, service.ErrGroupNotFound
	}
	return g, nil
}

type fakeMessages struct {
	mu    sync.Mutex
	calls int
	err   error
	users map[string]*domain.Author
}

func (f *fakeMessages) CreateMessage(ctx context.Context, in service.CreateMessageInput) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	groupID, err := uuid.Parse(in.GroupID)
	if err != nil {
		return nil, &service.ValidationError{Message: "Invalid groupId"}
	}
	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, &service.ValidationError{Message: "Invalid userId"}
	}
	msg := &domain.Message{Text: in.Text, UserID: userID, GroupID: groupID}
	msg.ID = uuid.New()
	msg.User = f.users[in.UserID]
	return msg, nil
}

type fakeMirror struct {
	mu     sync.Mutex
	online map[string]bool
	err    error
}

func (f *fakeMirror) SetOnline(ctx context.Context, groupID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.online[groupID+":"+userID] = true
	return nil
}

func (f *fakeMirror) SetOffline(ctx context.Context, groupID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.online, groupID+":"+userID)
	return nil
}

var errStore = errors.New("store unavailable")
