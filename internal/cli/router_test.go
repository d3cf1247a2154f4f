package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenant-portal/internal/chat"
	"tenant-portal/internal/handlers"
	"tenant-portal/internal/mocks"
	"tenant-portal/internal/models"
	"tenant-portal/internal/ws"
)

type tokenSessions map[string]models.Session

func (s tokenSessions) Resolve(ctx context.Context, token string) (models.Session, error) {
	if session, ok := s[token]; ok {
		return session, nil
	}
	return models.Session{}, errors.New("unknown token")
}

func testRouter(t *testing.T) (*gin.Engine, *mocks.UserRepositoryMock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()

	sessions := tokenSessions{
		"tenant":   {UID: "t1", Email: "t@example.com", Role: models.RoleTenant},
		"landlord": {UID: "l1", Email: "l@example.com", Role: models.RoleLandlord},
	}
	users := &mocks.UserRepositoryMock{}
	requests := &mocks.RequestRepositoryMock{}
	issues := &mocks.IssueRepositoryMock{}
	hub := ws.NewHub(logger)
	chatService := chat.NewService(users, &mocks.MessageRepositoryMock{}, hub, 10, 10, logger)

	router := NewRouter(Routes{
		ServiceName: "tenant-portal-test",
		Sessions:    sessions,
		Auth:        handlers.NewAuthHandler(nil, nil, logger),
		Profile:     handlers.NewProfileHandler(users, nil, logger),
		Issues:      handlers.NewIssueHandler(issues, users, &mocks.AdvisorMock{}, &mocks.ClassifierMock{}, &mocks.PhotoStoreMock{}, nil, logger),
		Requests:    handlers.NewRequestHandler(requests, nil, logger),
		Dashboard:   handlers.NewDashboardHandler(users, requests, issues, logger),
		Chat:        handlers.NewChatHandler(chatService, users, logger),
		ChatWS:      ws.NewChatWebSocketHandler(hub, chatService, sessions, logger),
	})
	return router, users
}

func call(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := testRouter(t)

	assert.Equal(t, http.StatusOK, call(router, http.MethodGet, "/healthz", "").Code)

	rec := call(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tenant_portal_")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	router, _ := testRouter(t)

	assert.Equal(t, http.StatusUnauthorized, call(router, http.MethodGet, "/profile", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(router, http.MethodGet, "/profile", "forged").Code)
}

func TestRoleGating(t *testing.T) {
	router, _ := testRouter(t)

	assert.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/landlord/dashboard", "tenant").Code)
	assert.Equal(t, http.StatusForbidden, call(router, http.MethodPost, "/issues", "landlord").Code)
	assert.Equal(t, http.StatusForbidden, call(router, http.MethodPost, "/tenant/requests/r1/accept", "landlord").Code)
}

func TestProfileRouteReachesHandler(t *testing.T) {
	router, users := testRouter(t)
	users.On("GetUser", mock.Anything, "t1").Return(models.User{UID: "t1"}, nil).Once()

	rec := call(router, http.MethodGet, "/profile", "tenant")

	assert.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestDebugRoutesDisabledByDefault(t *testing.T) {
	router, _ := testRouter(t)

	assert.Equal(t, http.StatusNotFound, call(router, http.MethodGet, "/debug/audit-test", "").Code)
}
