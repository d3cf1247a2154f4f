package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tenant-portal/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	KeyUID     = "uid"
	KeyEmail   = "email"
	KeyRole    = "role"
	KeyIDToken = "id_token"
	KeyToken   = "token"
)

// SessionResolver resolves bearer tokens to sessions.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (models.Session, error)
}

// AuthMiddleware validates the Authorization header against stored sessions.
func AuthMiddleware(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		token := strings.TrimSpace(parts[1])
		session, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(KeyToken, token)
		c.Set(KeyUID, session.UID)
		c.Set(KeyEmail, session.Email)
		c.Set(KeyRole, session.Role)
		c.Set(KeyIDToken, session.IDToken)
		c.Next()
	}
}

// RequireRole lets only callers with the given role through.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": role + " access only"})
			return
		}
		c.Next()
	}
}

// SessionFromContext rebuilds the caller's session from the gin context.
func SessionFromContext(c *gin.Context) models.Session {
	return models.Session{
		Token:   c.GetString(KeyToken),
		UID:     c.GetString(KeyUID),
		Email:   c.GetString(KeyEmail),
		Role:    c.GetString(KeyRole),
		IDToken: c.GetString(KeyIDToken),
	}
}
