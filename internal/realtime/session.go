package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"campus-chat-service/internal/client"
	"campus-chat-service/internal/service"
)

type SessionState int

const (
	StateConnecting SessionState = iota
	StateAuthenticated
	StateIdle
	StateInRoom
	StateDisconnected
	StateRejected
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateAuthenticated:
		return "Authenticated"
	case StateIdle:
		return "Idle"
	case StateInRoom:
		return "InRoom"
	case StateDisconnected:
		return "Disconnected"
	case StateRejected:
		return "Rejected"
	}
	return "Unknown"
}

const (
	msgNoToken      = "Authentication error: No token provided"
	msgInvalidToken = "Authentication error: Invalid token"
)

// Session drives one connection from handshake to disconnect. Handle is called
// by a single reader goroutine, so a client's events are processed in receipt order.
type Session struct {
	hub    *Hub
	connID string
	sink   Sink

	mu    sync.Mutex
	state SessionState
	peer  *Peer

	logger *zap.Logger
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ConnID() string {
	return s.connID
}

func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer == nil {
		return Identity{}
	}
	return s.peer.Identity
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Authenticate verifies the handshake credential. On failure the session is
// terminal and nothing is registered.
func (s *Session) Authenticate(ctx context.Context, token string) error {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return newError(KindAuthRejected, msgInvalidToken, errors.New("session already authenticated"))
	}
	s.mu.Unlock()

	if token == "" {
		s.setState(StateRejected)
		return newError(KindAuthRejected, msgNoToken, client.ErrMissingToken)
	}

	claims, err := s.hub.deps.Verifier.Verify(ctx, token)
	if err != nil {
		s.setState(StateRejected)
		return newError(KindAuthRejected, msgInvalidToken, err)
	}

	identity := Identity{SubjectID: claims.SubjectID, Email: claims.Email, Name: claims.Name}
	s.mu.Lock()
	s.peer = NewPeer(s.connID, identity, s.sink)
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.logger = s.logger.With(zap.String("uid", identity.SubjectID))
	return nil
}

// Start registers the connection, marks the identity online and auto-joins its
// assigned group. Presence bookkeeping failures are logged and swallowed.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return newError(KindAuthRejected, msgInvalidToken, errors.New("session not authenticated"))
	}
	peer := s.peer
	s.mu.Unlock()

	h := s.hub
	unlock := h.presenceLocks.Lock(peer.Identity.SubjectID)
	defer unlock()

	count, err := h.registry.Register(peer)
	if err != nil {
		s.setState(StateRejected)
		return newError(KindAuthRejected, "Duplicate connection", err)
	}
	s.setState(StateIdle)
	h.deps.Metrics.RecordConnectionOpened()
	s.logger.Info("Connection registered", zap.Int("connections", count))

	user, err := h.deps.Users.SetOnline(ctx, peer.Identity.SubjectID)
	if err != nil {
		h.deps.Metrics.RecordPresenceError()
		s.logger.Warn("Failed to mark user online", zap.Error(err))
		return nil
	}
	peer.setUserID(user.ID.String())
	if count == 1 {
		h.deps.Metrics.RecordPresenceTransition(true)
	}

	groupID := user.AssignedGroupID()
	if groupID == "" {
		return nil
	}
	if err := h.registry.JoinRoom(peer.ConnID, groupID); err != nil {
		s.logger.Warn("Auto-join failed", zap.String("group_id", groupID), zap.Error(err))
		return nil
	}
	s.setState(StateInRoom)

	if count == 1 {
		h.router.Dispatch(Event{
			Kind:    PresenceChanged,
			Room:    groupID,
			Payload: PresencePayload{UserID: user.ID.String(), IsOnline: true},
		})
		h.mirrorPresence(ctx, groupID, user.ID.String(), true)
	}
	return nil
}

// Close unregisters the connection. When it was the identity's last one the
// identity is marked offline and the assigned group is told.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateInRoom {
		if s.state != StateRejected {
			s.state = StateDisconnected
		}
		s.mu.Unlock()
		return
	}
	s.state = StateDisconnected
	peer := s.peer
	s.mu.Unlock()

	h := s.hub
	unlock := h.presenceLocks.Lock(peer.Identity.SubjectID)
	defer unlock()

	remaining, _, ok := h.registry.Unregister(peer.ConnID)
	if !ok {
		return
	}
	h.deps.Metrics.RecordConnectionClosed()
	s.logger.Info("Connection unregistered", zap.Int("remaining", remaining))
	if remaining > 0 {
		return
	}

	lastSeen := h.clock.Now().UTC()
	user, err := h.deps.Users.SetOffline(ctx, peer.Identity.SubjectID, lastSeen)
	if err != nil {
		h.deps.Metrics.RecordPresenceError()
		s.logger.Warn("Failed to mark user offline", zap.Error(err))
		return
	}

	h.deps.Metrics.RecordPresenceTransition(false)
	groupID := user.AssignedGroupID()
	if groupID == "" {
		return
	}
	h.router.Dispatch(Event{
		Kind:    PresenceChanged,
		Room:    groupID,
		Payload: PresencePayload{UserID: user.ID.String(), IsOnline: false, LastSeen: &lastSeen},
	})
	h.mirrorPresence(ctx, groupID, user.ID.String(), false)
}

// Handle processes one inbound frame to completion. The returned error has
// already been sent privately to the client.
func (s *Session) Handle(ctx context.Context, raw []byte) error {
	switch s.State() {
	case StateIdle, StateInRoom:
	default:
		return nil
	}

	in, err := ParseInbound(raw)
	if err != nil {
		return s.fail(newError(KindValidationFailed, "Invalid event payload", err))
	}

	switch in.Event {
	case EventJoinGroup:
		err = s.joinGroup(ctx, in.Data)
	case EventSendMessage:
		err = s.sendMessage(ctx, in.Data)
	case EventUpdateStatus:
		err = s.updateStatus(ctx, in.Data)
	default:
		s.logger.Debug("Ignoring unknown event", zap.String("event", in.Event))
		return nil
	}
	if err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Session) joinGroup(ctx context.Context, data gjson.Result) error {
	groupID := joinGroupID(data)
	if groupID == "" {
		return newError(KindValidationFailed, "Missing required fields", nil)
	}
	peer := s.peer
	h := s.hub

	if groupID == GlobalSentinel {
		if !s.isPrivileged(ctx) {
			return newError(KindUnauthorized, "Unauthorized", nil)
		}
		if err := h.registry.JoinRoom(peer.ConnID, GlobalRoom); err != nil {
			return newError(KindPersistenceFailed, "Failed to join group", err)
		}
		s.setState(StateInRoom)
		s.logger.Info("Joined global audience")
		s.reply(EventJoinedGroup, JoinedGroupPayload{GroupID: GlobalSentinel})
		return nil
	}

	group, err := h.deps.Groups.FindGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return newError(KindNotFound, "Group not found", err)
		}
		return newError(KindPersistenceFailed, "Failed to join group", err)
	}

	roomID := group.ID.String()
	if err := h.registry.JoinRoom(peer.ConnID, roomID); err != nil {
		return newError(KindPersistenceFailed, "Failed to join group", err)
	}
	s.setState(StateInRoom)
	s.logger.Info("Joined group", zap.String("group_id", roomID))
	s.reply(EventJoinedGroup, JoinedGroupPayload{
		GroupID:    roomID,
		Department: group.Department,
		ClassLevel: group.ClassLevel,
	})
	return nil
}

func (s *Session) sendMessage(ctx context.Context, data gjson.Result) error {
	in := service.CreateMessageInput{
		Text:    data.Get("text").String(),
		UserID:  data.Get("userId").String(),
		GroupID: data.Get("groupId").String(),
	}
	if in.Text == "" || in.UserID == "" || in.GroupID == "" {
		return newError(KindValidationFailed, "Missing required fields", nil)
	}
	if own := s.ownUserID(ctx); own != "" && own != in.UserID {
		s.logger.Warn("Rejected message for another user", zap.String("claimed_user_id", in.UserID))
		return newError(KindUnauthorized, "Unauthorized", nil)
	}

	msg, err := s.hub.deps.Messages.CreateMessage(ctx, in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return newError(KindValidationFailed, verr.Message, err)
		}
		return newError(KindPersistenceFailed, "Failed to send message", err)
	}

	n := s.hub.router.Dispatch(Event{Kind: MessageCreated, Room: msg.GroupID.String(), Payload: msg})
	s.logger.Debug("Message broadcast",
		zap.String("group_id", msg.GroupID.String()),
		zap.Int("recipients", n),
	)
	return nil
}

func (s *Session) updateStatus(ctx context.Context, data gjson.Result) error {
	status := data.Get("status")
	if !status.Exists() || status.Type == gjson.Null {
		return newError(KindValidationFailed, "Missing required fields", nil)
	}

	global := s.isPrivileged(ctx)
	s.hub.router.Dispatch(Event{
		Kind:    StatusUpdated,
		Room:    data.Get("groupId").String(),
		Global:  global,
		Payload: json.RawMessage(status.Raw),
	})
	return nil
}

// ownUserID returns the durable user id behind the connection, resolving it
// when the online write at connect time did not. Empty when unknown.
func (s *Session) ownUserID(ctx context.Context) string {
	if id := s.peer.UserID(); id != "" {
		return id
	}
	user, err := s.hub.deps.Users.FindBySubject(ctx, s.peer.Identity.SubjectID)
	if err != nil {
		s.logger.Debug("User lookup failed", zap.Error(err))
		return ""
	}
	s.peer.setUserID(user.ID.String())
	return user.ID.String()
}

// isPrivileged checks the bootstrap subject first, then the stored role.
func (s *Session) isPrivileged(ctx context.Context) bool {
	subject := s.peer.Identity.SubjectID
	if privileged := s.hub.deps.PrivilegedUID; privileged != "" && subject == privileged {
		return true
	}
	user, err := s.hub.deps.Users.FindBySubject(ctx, subject)
	if err != nil {
		s.logger.Debug("Role lookup failed", zap.Error(err))
		return false
	}
	return user.IsAdmin()
}

func (s *Session) fail(err error) error {
	var rerr *Error
	if !errors.As(err, &rerr) {
		rerr = newError(KindPersistenceFailed, "Internal error", err)
	}
	if rerr.Kind == KindPersistenceFailed {
		s.logger.Error("Event failed", zap.Error(rerr))
	} else {
		s.logger.Debug("Event rejected", zap.Error(rerr))
	}
	s.reply(EventError, ErrorPayload{Message: rerr.Message})
	return rerr
}

func (s *Session) reply(event string, data interface{}) {
	frame, err := encodeEnvelope(event, data)
	if err != nil {
		s.logger.Error("Failed to encode reply", zap.String("event", event), zap.Error(err))
		return
	}
	if !s.sink.Send(frame) {
		s.logger.Debug("Reply dropped", zap.String("event", event))
	}
}
