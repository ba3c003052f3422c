package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-chat-service/internal/client"
	"campus-chat-service/internal/database"
	"campus-chat-service/internal/metrics"
	"campus-chat-service/internal/realtime"
	"campus-chat-service/internal/repository"
	"campus-chat-service/internal/service"
)

type stubVerifier map[string]string

func (s stubVerifier) Verify(ctx context.Context, token string) (*client.Claims, error) {
	uid, ok := s[token]
	if !ok {
		return nil, client.ErrInvalidToken
	}
	return &client.Claims{SubjectID: uid, Email: uid + "@campus.edu", Name: uid}, nil
}

type testApp struct {
	engine   *gin.Engine
	registry *prometheus.Registry
}

func setupTestRouter(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := zap.NewNop()
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry, log)

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	users := service.NewUserService(userRepo, groupRepo, log)
	groups := service.NewGroupService(groupRepo, userRepo, log)
	messages := service.NewMessageService(repository.NewMessageRepository(db), groups, m, log)
	statuses := service.NewStatusService(repository.NewStatusRepository(db), clock.New(), m, log)
	files := service.NewFileService(repository.NewFileRepository(db), groups, nil, 50*1024*1024, m, log)
	schedule := service.NewScheduleService(repository.NewCourseRepository(db), log)

	verifier := stubVerifier{"tok-u1": "u1"}
	hub := realtime.NewHub(realtime.Deps{
		Verifier: verifier,
		Users:    users,
		Groups:   groups,
		Messages: messages,
		Metrics:  m,
		Logger:   log,
	})

	engine := Setup(Config{
		DB:       db,
		Logger:   log,
		Metrics:  m,
		Gatherer: registry,
		Verifier: verifier,
		Hub:      hub,
		Services: Services{
			Users:    users,
			Groups:   groups,
			Messages: messages,
			Statuses: statuses,
			Files:    files,
			Schedule: schedule,
		},
		BasePath:        "/api",
		AllowAllOrigins: true,
		APIPerMinute:    100,
		UploadsPer15Min: 10,
	})
	return &testApp{engine: engine, registry: registry}
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics_NoAuthentication(t *testing.T) {
	app := setupTestRouter(t)

	w := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "campus_chat_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	app := setupTestRouter(t)

	w := app.do(http.MethodGet, "/api/does-not-exist", "tok-u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Route not found","path":"/api/does-not-exist"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupTestRouter(t)

	for _, path := range []string{"/api/groups", "/api/schedule", "/api/presence/online/x", "/api/messages/x"} {
		w := app.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = app.do(http.MethodGet, path, "forged", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// Users are open so a client can sync before its first authenticated call.
	w := app.do(http.MethodGet, "/api/users/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRESTFlow(t *testing.T) {
	app := setupTestRouter(t)

	w := app.do(http.MethodPost, "/api/users", "", map[string]interface{}{
		"uid": "u1", "email": "u1@campus.edu", "name": "Student One",
		"department": "Computer Science", "classLevel": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var synced struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Group struct {
			ID string `json:"id"`
		} `json:"group"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &synced))
	groupID := synced.Group.ID
	require.NotEmpty(t, groupID)

	w = app.do(http.MethodGet, "/api/groups", "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var groups []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	assert.Len(t, groups, 1)

	w = app.do(http.MethodPost, "/api/groups", "tok-u1", map[string]interface{}{
		"department": "Computer Science", "classLevel": 2,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(http.MethodPost, "/api/messages", "tok-u1", map[string]string{
		"text": "hello", "userId": synced.User.ID, "groupId": groupID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(http.MethodGet, "/api/messages/"+groupID, "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Messages []map[string]interface{} `json:"messages"`
		Total    int64                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "hello", page.Messages[0]["text"])

	w = app.do(http.MethodPost, "/api/statuses", "tok-u1", map[string]string{
		"userId": synced.User.ID, "groupId": groupID, "text": "in the library",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var status struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))

	w = app.do(http.MethodDelete, "/api/statuses/"+status.ID, "tok-u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPost, "/api/schedule", "tok-u1", map[string]string{
		"name": "Operating Systems", "day": "MON", "startTime": "09:00", "endTime": "10:30",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(http.MethodGet, "/api/schedule", "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var courses []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &courses))
	assert.Len(t, courses, 1)

	w = app.do(http.MethodGet, "/api/presence/online/"+groupID, "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"groupId":%q,"users":[],"source":"local"}`, groupID), w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	app := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/groups", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
