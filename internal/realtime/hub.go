package realtime

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"campus-chat-service/internal/client"
	"campus-chat-service/internal/config"
	"campus-chat-service/internal/domain"
	"campus-chat-service/internal/metrics"
	"campus-chat-service/internal/service"
)

const operationTimeout = 10 * time.Second

// UserStore is the durable identity record used for presence bookkeeping.
type UserStore interface {
	SetOnline(ctx context.Context, uid string) (*domain.User, error)
	SetOffline(ctx context.Context, uid string, lastSeen time.Time) (*domain.User, error)
	FindBySubject(ctx context.Context, uid string) (*domain.User, error)
}

type GroupFinder interface {
	FindGroup(ctx context.Context, id string) (*domain.Group, error)
}

type MessageCreator interface {
	CreateMessage(ctx context.Context, in service.CreateMessageInput) (*domain.Message, error)
}

// PresenceMirror receives online/offline transitions for cross-instance reads.
type PresenceMirror interface {
	SetOnline(ctx context.Context, groupID, userID string) error
	SetOffline(ctx context.Context, groupID, userID string) error
}

type Deps struct {
	Verifier client.IdentityVerifier
	Users    UserStore
	Groups   GroupFinder
	Messages MessageCreator
	// Presence is optional.
	Presence PresenceMirror
	Metrics  *metrics.Metrics
	Clock    clock.Clock
	Logger   *zap.Logger

	Config          config.RealtimeConfig
	PrivilegedUID   string
	AllowedOrigins  []string
	AllowAllOrigins bool
}

// Hub owns the registry and router for the process and serves the socket endpoint.
type Hub struct {
	deps          Deps
	registry      *Registry
	router        *EventRouter
	presenceLocks *keyedMutex
	clock         clock.Clock
	logger        *zap.Logger
	upgrader      websocket.Upgrader

	mu      sync.Mutex
	conns   map[*wsConn]struct{}
	closing bool
	wg      sync.WaitGroup
}

func NewHub(deps Deps) *Hub {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}

	registry := NewRegistry()
	h := &Hub{
		deps:          deps,
		registry:      registry,
		router:        NewEventRouter(registry, deps.Metrics, deps.Logger),
		presenceLocks: newKeyedMutex(),
		clock:         deps.Clock,
		logger:        deps.Logger,
		conns:         make(map[*wsConn]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) Router() *EventRouter {
	return h.router
}

// NewSession creates a session in the Connecting state writing to sink.
func (h *Hub) NewSession(sink Sink) *Session {
	connID := uuid.NewString()
	return &Session{
		hub:    h,
		connID: connID,
		sink:   sink,
		state:  StateConnecting,
		logger: h.logger.With(zap.String("conn_id", connID)),
	}
}

// OnlineUsers returns the record ids of identities connected to groupID.
func (h *Hub) OnlineUsers(groupID string) []string {
	seen := make(map[string]struct{})
	users := []string{}
	for _, p := range h.registry.Peers(groupID) {
		id := p.UserID()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

func (h *Hub) mirrorPresence(ctx context.Context, groupID, userID string, online bool) {
	if h.deps.Presence == nil {
		return
	}
	var err error
	if online {
		err = h.deps.Presence.SetOnline(ctx, groupID, userID)
	} else {
		err = h.deps.Presence.SetOffline(ctx, groupID, userID)
	}
	if err != nil {
		h.deps.Metrics.RecordPresenceError()
		h.logger.Warn("Failed to mirror presence",
			zap.String("group_id", groupID),
			zap.String("user_id", userID),
			zap.Bool("online", online),
			zap.Error(err),
		)
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.deps.AllowAllOrigins {
		return true
	}
	for _, allowed := range h.deps.AllowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func handshakeToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// ServeWS upgrades the request and runs a session on it. A rejected handshake
// is closed with a policy-violation frame carrying the reason.
func (h *Hub) ServeWS(c *gin.Context) {
	token := handshakeToken(c)

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}
	conn := newWSConn(ws, h.deps.Config)
	session := h.NewSession(conn)

	err = h.authenticate(c.Request.Context(), session, token)
	if err != nil {
		reason := msgInvalidToken
		if rerr, ok := err.(*Error); ok && rerr.Message != "" {
			reason = rerr.Message
		}
		h.deps.Metrics.RecordHandshakeRejected()
		h.logger.Info("Handshake rejected",
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err),
		)
		conn.closeWith(websocket.ClosePolicyViolation, reason)
		return
	}

	if !h.track(conn) {
		conn.closeWith(websocket.CloseGoingAway, "Server shutting down")
		return
	}

	go conn.writePump()

	startCtx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	err = session.Start(startCtx)
	cancel()
	if err != nil {
		h.logger.Error("Failed to start session", zap.Error(err))
		conn.closeSend()
		h.untrack(conn)
		return
	}

	h.logger.Info("Connection accepted",
		zap.String("conn_id", session.ConnID()),
		zap.String("uid", session.Identity().SubjectID),
	)
	go h.readPump(conn, session)
}

func (h *Hub) authenticate(ctx context.Context, session *Session, token string) error {
	if timeout := h.deps.Config.HandshakeTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return session.Authenticate(ctx, token)
}

func (h *Hub) readPump(conn *wsConn, session *Session) {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		session.Close(ctx)
		cancel()
		conn.closeSend()
		h.untrack(conn)
	}()

	ws := conn.ws
	ws.SetReadLimit(conn.maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(conn.pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(conn.pongWait))
		return nil
	})

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket error", zap.String("conn_id", session.ConnID()), zap.Error(err))
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		session.Handle(ctx, frame)
		cancel()
	}
}

func (h *Hub) track(conn *wsConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.conns[conn] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Hub) untrack(conn *wsConn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		h.wg.Done()
	}
}

// Shutdown closes every live connection and waits for their disconnect paths.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	conns := make([]*wsConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	h.logger.Info("Closing realtime connections", zap.Int("count", len(conns)))
	for _, c := range conns {
		c.closeWith(websocket.CloseGoingAway, "Server shutting down")
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
