package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenant-portal/internal/identity"
	"tenant-portal/internal/middleware"
	"tenant-portal/internal/models"
	"tenant-portal/internal/repositories"
)

// CredentialUpdater forwards e-mail and password changes to the identity
// provider and keeps open sessions in step with a new e-mail.
type CredentialUpdater interface {
	UpdateCredentials(ctx context.Context, session models.Session, email, password string) error
	SyncEmail(ctx context.Context, uid, email string) error
}

// ProfileHandler reads and edits the caller's profile.
type ProfileHandler struct {
	users       repositories.UserRepository
	credentials CredentialUpdater
	logger      *zap.SugaredLogger
}

func NewProfileHandler(users repositories.UserRepository, credentials CredentialUpdater, logger *zap.SugaredLogger) *ProfileHandler {
	return &ProfileHandler{users: users, credentials: credentials, logger: logger}
}

// GetProfile returns the caller's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.GetString(middleware.KeyUID))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile edits username, e-mail, state and country. A new password
// or e-mail is forwarded to the identity provider first.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Username string  `json:"username"`
		Email    *string `json:"email"`
		State    *string `json:"state"`
		Country  *string `json:"country"`
		Password string  `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	session := middleware.SessionFromContext(c)
	current, err := h.users.GetUser(ctx, session.UID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to load profile"})
		return
	}

	update := models.ProfileUpdate{
		Username: current.Username,
		Email:    current.Email,
		State:    current.State,
		Country:  current.Country,
	}
	if name := strings.TrimSpace(req.Username); name != "" {
		update.Username = name
	}
	if req.State != nil {
		update.State = strings.TrimSpace(*req.State)
	}
	if req.Country != nil {
		update.Country = strings.TrimSpace(*req.Country)
	}

	newEmail := ""
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email cannot be empty"})
			return
		}
		if !strings.EqualFold(email, current.Email) {
			newEmail = email
			update.Email = email
		}
	}

	if err := h.credentials.UpdateCredentials(ctx, session, newEmail, req.Password); err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, identity.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, identity.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in again to change credentials"})
		default:
			h.logger.Errorw("credential update failed", "uid", session.UID, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to update credentials"})
		}
		return
	}

	user, err := h.users.UpdateProfile(ctx, session.UID, update)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserExists) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": "failed to update profile"})
		return
	}

	if newEmail != "" {
		if err := h.credentials.SyncEmail(ctx, session.UID, user.Email); err != nil {
			h.logger.Errorw("session e-mail sync failed", "uid", session.UID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile saved, log in again to refresh your session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
