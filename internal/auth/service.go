// Package auth owns portal sessions: signing users up and in against the
// identity provider and resolving bearer tokens on later requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tenant-portal/internal/identity"
	"tenant-portal/internal/models"
	"tenant-portal/internal/repositories"
)

var (
	ErrInvalidRole    = errors.New("role must be tenant or landlord")
	ErrMissingFields  = errors.New("email and password are required")
	ErrProfileMissing = errors.New("user data not found, please sign up")
	ErrSessionExpired = errors.New("session expired")
)

// Identity is the provider surface used for credentials.
type Identity interface {
	SignUp(ctx context.Context, email, password string) (identity.Account, error)
	SignIn(ctx context.Context, email, password string) (identity.Account, error)
	UpdateAccount(ctx context.Context, idToken, email, password string) error
}

// SignUpInput is what a new user submits.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Username string `json:"username"`
	State    string `json:"state"`
	Country  string `json:"country"`
}

// Service issues and resolves sessions.
type Service struct {
	identity Identity
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.SugaredLogger
}

func NewService(id Identity, users repositories.UserRepository, sessions repositories.SessionRepository, ttl time.Duration, logger *zap.SugaredLogger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{identity: id, users: users, sessions: sessions, ttl: ttl, now: time.Now, logger: logger}
}

// SignUp creates the provider account and the portal profile, then opens
// a session for the new user.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (models.Session, models.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Role = strings.TrimSpace(strings.ToLower(in.Role))
	if in.Email == "" || in.Password == "" {
		return models.Session{}, models.User{}, ErrMissingFields
	}
	if !models.ValidRole(in.Role) {
		return models.Session{}, models.User{}, ErrInvalidRole
	}

	account, err := s.identity.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		return models.Session{}, models.User{}, err
	}

	user, err := s.users.CreateUser(ctx, models.User{
		UID:      account.UID,
		Email:    account.Email,
		Username: strings.TrimSpace(in.Username),
		Role:     in.Role,
		State:    strings.TrimSpace(in.State),
		Country:  strings.TrimSpace(in.Country),
	})
	if err != nil {
		return models.Session{}, models.User{}, fmt.Errorf("store user: %w", err)
	}

	session, err := s.open(ctx, account, user.Role)
	if err != nil {
		return models.Session{}, models.User{}, err
	}
	s.logger.Infow("user signed up", "uid", user.UID, "role", user.Role)
	return session, user, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (models.Session, models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return models.Session{}, models.User{}, ErrMissingFields
	}

	account, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return models.Session{}, models.User{}, err
	}

	user, err := s.users.GetUser(ctx, account.UID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.Session{}, models.User{}, ErrProfileMissing
	}
	if err != nil {
		return models.Session{}, models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !models.ValidRole(user.Role) {
		return models.Session{}, models.User{}, ErrInvalidRole
	}

	session, err := s.open(ctx, account, user.Role)
	if err != nil {
		return models.Session{}, models.User{}, err
	}
	return session, user, nil
}

// Logout drops the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Resolve returns the live session for token.
func (s *Service) Resolve(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, repositories.ErrSessionNotFound
	}
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return models.Session{}, err
	}
	if session.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			s.logger.Warnw("failed to drop expired session", "uid", session.UID, "error", err)
		}
		return models.Session{}, ErrSessionExpired
	}
	return session, nil
}

// UpdateCredentials forwards an e-mail or password change to the provider.
func (s *Service) UpdateCredentials(ctx context.Context, session models.Session, email, password string) error {
	if email == "" && password == "" {
		return nil
	}
	return s.identity.UpdateAccount(ctx, session.IDToken, email, password)
}

// SyncEmail points the open sessions of uid at a changed e-mail.
func (s *Service) SyncEmail(ctx context.Context, uid, email string) error {
	return s.sessions.UpdateEmail(ctx, uid, email)
}

// PurgeExpired removes sessions past their expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *Service) open(ctx context.Context, account identity.Account, role string) (models.Session, error) {
	now := s.now().UTC()
	session := models.Session{
		Token:     uuid.NewString(),
		UID:       account.UID,
		Email:     account.Email,
		Role:      role,
		IDToken:   account.IDToken,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}
