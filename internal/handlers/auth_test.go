package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tenant-portal/internal/auth"
	"tenant-portal/internal/identity"
	"tenant-portal/internal/mocks"
	"tenant-portal/internal/models"
	"tenant-portal/internal/repositories"
)

type authFixture struct {
	id       *mocks.IdentityMock
	users    *mocks.UserRepositoryMock
	sessions *mocks.SessionRepositoryMock
	pub      *mocks.PublisherMock
	handler  *AuthHandler
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		id:       &mocks.IdentityMock{},
		users:    &mocks.UserRepositoryMock{},
		sessions: &mocks.SessionRepositoryMock{},
	}
	svc := auth.NewService(f.id, f.users, f.sessions, time.Hour, nopLogger)
	emitter, pub := newTestEmitter()
	f.pub = pub
	f.handler = NewAuthHandler(svc, emitter, nopLogger)
	return f
}

func (f *authFixture) router() *gin.Engine {
	r := newTestRouter("u1", "a@example.com", models.RoleTenant)
	r.POST("/signup", f.handler.SignUp)
	r.POST("/login", f.handler.Login)
	r.POST("/logout", f.handler.Logout)
	return r
}

func TestSignUpSuccess(t *testing.T) {
	f := newAuthFixture()
	f.id.On("SignUp", mock.Anything, "a@example.com", "secret1").Return(identity.Account{UID: "u1", Email: "a@example.com"}, nil).Once()
	f.users.On("CreateUser", mock.Anything, mock.Anything).Return(models.User{UID: "u1", Email: "a@example.com", Role: models.RoleLandlord}, nil).Once()
	f.sessions.On("CreateSession", mock.Anything, mock.Anything).Return(nil).Once()
	f.pub.On("Publish", mock.Anything, "audit.tenant-portal", mock.Anything, mock.Anything).Return(nil).Once()

	rec := doJSON(f.router(), http.MethodPost, "/signup", `{"email":"a@example.com","password":"secret1","role":"landlord"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, "landlord", resp["role"])
	f.pub.AssertExpectations(t)
}

func TestSignUpInvalidRole(t *testing.T) {
	f := newAuthFixture()

	rec := doJSON(f.router(), http.MethodPost, "/signup", `{"email":"a@example.com","password":"secret1","role":"admin"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.id.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignUpEmailTaken(t *testing.T) {
	f := newAuthFixture()
	f.id.On("SignUp", mock.Anything, "a@example.com", "secret1").Return(identity.Account{}, identity.ErrEmailExists).Once()

	rec := doJSON(f.router(), http.MethodPost, "/signup", `{"email":"a@example.com","password":"secret1","role":"tenant"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginStatuses(t *testing.T) {
	cases := []struct {
		name     string
		signIn   error
		user     any
		userErr  error
		expected int
	}{
		{name: "wrong password", signIn: identity.ErrInvalidCredentials, expected: http.StatusUnauthorized},
		{name: "no profile", user: nil, userErr: repositories.ErrUserNotFound, expected: http.StatusNotFound},
		{name: "bad role", user: models.User{UID: "u1", Role: "admin"}, expected: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture()
			f.id.On("SignIn", mock.Anything, "a@example.com", "pw").Return(identity.Account{UID: "u1", Email: "a@example.com"}, tc.signIn).Once()
			if tc.signIn == nil {
				f.users.On("GetUser", mock.Anything, "u1").Return(tc.user, tc.userErr).Once()
			}

			rec := doJSON(f.router(), http.MethodPost, "/login", `{"email":"a@example.com","password":"pw"}`)

			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture()
	f.id.On("SignIn", mock.Anything, "a@example.com", "pw").Return(identity.Account{UID: "u1", Email: "a@example.com"}, nil).Once()
	f.users.On("GetUser", mock.Anything, "u1").Return(models.User{UID: "u1", Role: models.RoleTenant}, nil).Once()
	f.sessions.On("CreateSession", mock.Anything, mock.Anything).Return(nil).Once()

	rec := doJSON(f.router(), http.MethodPost, "/login", `{"email":"a@example.com","password":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "u1", resp["uid"])
	assert.Equal(t, "tenant", resp["role"])
}

func TestLogoutDeletesSession(t *testing.T) {
	f := newAuthFixture()
	f.sessions.On("DeleteSession", mock.Anything, "tok").Return(nil).Once()

	rec := doJSON(f.router(), http.MethodPost, "/logout", "")

	require.Equal(t, http.StatusOK, rec.Code)
	f.sessions.AssertExpectations(t)
}
