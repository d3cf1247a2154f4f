package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tenant-portal/internal/models"
	"tenant-portal/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, uid string) (models.User, error) {
	args := m.Called(ctx, uid)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) (models.User, error) {
	args := m.Called(ctx, uid, update)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) ListTenants(ctx context.Context, landlordUID string) ([]models.AttachedTenant, error) {
	args := m.Called(ctx, landlordUID)
	var out []models.AttachedTenant
	if val := args.Get(0); val != nil {
		out = val.([]models.AttachedTenant)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) IsAttached(ctx context.Context, landlordUID string, tenantUID string) (bool, error) {
	args := m.Called(ctx, landlordUID, tenantUID)
	return args.Bool(0), args.Error(1)
}

type RequestRepositoryMock struct {
	mock.Mock
}

func (m *RequestRepositoryMock) CreateRequest(ctx context.Context, tenantEmail, landlordEmail, landlordUID string) (models.Request, error) {
	args := m.Called(ctx, tenantEmail, landlordEmail, landlordUID)
	var out models.Request
	if val := args.Get(0); val != nil {
		out = val.(models.Request)
	}
	return out, args.Error(1)
}

func (m *RequestRepositoryMock) GetRequest(ctx context.Context, requestID string) (models.Request, error) {
	args := m.Called(ctx, requestID)
	var out models.Request
	if val := args.Get(0); val != nil {
		out = val.(models.Request)
	}
	return out, args.Error(1)
}

func (m *RequestRepositoryMock) ListPendingForTenant(ctx context.Context, tenantEmail string) ([]models.Request, error) {
	args := m.Called(ctx, tenantEmail)
	var out []models.Request
	if val := args.Get(0); val != nil {
		out = val.([]models.Request)
	}
	return out, args.Error(1)
}

func (m *RequestRepositoryMock) AcceptRequest(ctx context.Context, requestID, tenantUID, tenantEmail string) (models.Request, error) {
	args := m.Called(ctx, requestID, tenantUID, tenantEmail)
	var out models.Request
	if val := args.Get(0); val != nil {
		out = val.(models.Request)
	}
	return out, args.Error(1)
}

type IssueRepositoryMock struct {
	mock.Mock
}

func (m *IssueRepositoryMock) CreateIssue(ctx context.Context, issue models.Issue) (models.Issue, error) {
	args := m.Called(ctx, issue)
	var out models.Issue
	if val := args.Get(0); val != nil {
		out = val.(models.Issue)
	}
	return out, args.Error(1)
}

func (m *IssueRepositoryMock) GetIssue(ctx context.Context, issueID int) (models.Issue, error) {
	args := m.Called(ctx, issueID)
	var out models.Issue
	if val := args.Get(0); val != nil {
		out = val.(models.Issue)
	}
	return out, args.Error(1)
}

func (m *IssueRepositoryMock) ListIssuesForTenant(ctx context.Context, tenantUID string) ([]models.Issue, error) {
	args := m.Called(ctx, tenantUID)
	var out []models.Issue
	if val := args.Get(0); val != nil {
		out = val.([]models.Issue)
	}
	return out, args.Error(1)
}

func (m *IssueRepositoryMock) ListIssuesForLandlord(ctx context.Context, landlordUID string) ([]models.Issue, error) {
	args := m.Called(ctx, landlordUID)
	var out []models.Issue
	if val := args.Get(0); val != nil {
		out = val.([]models.Issue)
	}
	return out, args.Error(1)
}

func (m *IssueRepositoryMock) ResolveIssue(ctx context.Context, issueID int, tenantUID string) (models.Issue, error) {
	args := m.Called(ctx, issueID, tenantUID)
	var out models.Issue
	if val := args.Get(0); val != nil {
		out = val.(models.Issue)
	}
	return out, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	args := m.Called(ctx, msg)
	var out models.ChatMessage
	if val := args.Get(0); val != nil {
		out = val.(models.ChatMessage)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) ListRoomMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	args := m.Called(ctx, chatID)
	var out []models.ChatMessage
	if val := args.Get(0); val != nil {
		out = val.([]models.ChatMessage)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) LatestRoomMessages(ctx context.Context, chatID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, chatID, limit)
	var out []models.ChatMessage
	if val := args.Get(0); val != nil {
		out = val.([]models.ChatMessage)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessages(ctx context.Context, ids []int) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) CreateSession(ctx context.Context, session models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionRepositoryMock) GetSession(ctx context.Context, token string) (models.Session, error) {
	args := m.Called(ctx, token)
	var out models.Session
	if val := args.Get(0); val != nil {
		out = val.(models.Session)
	}
	return out, args.Error(1)
}

func (m *SessionRepositoryMock) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *SessionRepositoryMock) UpdateEmail(ctx context.Context, uid, email string) error {
	args := m.Called(ctx, uid, email)
	return args.Error(0)
}

func (m *SessionRepositoryMock) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.RequestRepository = (*RequestRepositoryMock)(nil)
var _ repositories.IssueRepository = (*IssueRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.SessionRepository = (*SessionRepositoryMock)(nil)
