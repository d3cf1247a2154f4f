package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenant-portal/internal/auth"
	"tenant-portal/internal/identity"
	"tenant-portal/internal/middleware"
	"tenant-portal/internal/models"
	"tenant-portal/internal/telemetry"
)

// Authenticator opens and closes sessions.
type Authenticator interface {
	SignUp(ctx context.Context, in auth.SignUpInput) (models.Session, models.User, error)
	Login(ctx context.Context, email, password string) (models.Session, models.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves signup, login and logout.
type AuthHandler struct {
	auth    Authenticator
	emitter *telemetry.Emitter
	logger  *zap.SugaredLogger
}

func NewAuthHandler(authenticator Authenticator, emitter *telemetry.Emitter, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{auth: authenticator, emitter: emitter, logger: logger}
}

type sessionResponse struct {
	Token     string    `json:"token"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newSessionResponse(s models.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		UID:       s.UID,
		Email:     s.Email,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt,
	}
}

// SignUp registers a tenant or landlord.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req auth.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, user, err := h.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		status, msg := authErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Errorw("signup failed", "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	h.emitter.Audit(c.Request.Context(), "INFO", "user signed up as "+user.Role, requestIDFromContext(c), &user.UID)
	c.JSON(http.StatusCreated, newSessionResponse(session))
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, _, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := authErrorStatus(err)
		if errors.Is(err, auth.ErrInvalidRole) {
			status, msg = http.StatusForbidden, "invalid user role"
		}
		if status == http.StatusInternalServerError {
			h.logger.Errorw("login failed", "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

// Logout ends the caller's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), c.GetString(middleware.KeyToken)); err != nil {
		h.logger.Errorw("logout failed", "uid", c.GetString(middleware.KeyUID), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func authErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrInvalidRole), errors.Is(err, identity.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, identity.ErrEmailExists):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, auth.ErrProfileMissing):
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, "authentication failed"
}
