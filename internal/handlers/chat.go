package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenant-portal/internal/chat"
	"tenant-portal/internal/middleware"
	"tenant-portal/internal/models"
	"tenant-portal/internal/repositories"
)

// ChatService is the room logic the HTTP endpoints use.
type ChatService interface {
	Authorize(ctx context.Context, chatID, uid, role string) (string, error)
	Rooms(ctx context.Context, user models.User) ([]models.ChatRoom, error)
	History(ctx context.Context, chatID string) ([]models.ChatMessage, error)
	Send(ctx context.Context, chatID, sender, text, msgType string) (models.ChatMessage, error)
}

// ChatHandler manages landlord/tenant chat endpoints.
type ChatHandler struct {
	rooms  ChatService
	users  repositories.UserRepository
	logger *zap.SugaredLogger
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(rooms ChatService, users repositories.UserRepository, logger *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{rooms: rooms, users: users, logger: logger}
}

// ListChats returns the rooms the authenticated user can open.
func (h *ChatHandler) ListChats(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.GetString(middleware.KeyUID))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to load profile"})
		return
	}

	rooms, err := h.rooms.Rooms(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": rooms})
}

// GetChatMessages returns the latest messages of a room, oldest first.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	chatID := c.Param("chat_id")
	if !h.authorize(c, chatID) {
		return
	}

	msgs, err := h.rooms.History(c.Request.Context(), chatID)
	if err != nil {
		h.logger.Errorw("load chat history", "chat_id", chatID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostChatMessage broadcasts a message, stores it and trims the room.
func (h *ChatHandler) PostChatMessage(c *gin.Context) {
	chatID := c.Param("chat_id")
	if !h.authorize(c, chatID) {
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
		Type    string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.rooms.Send(c.Request.Context(), chatID, c.GetString(middleware.KeyEmail), req.Message, req.Type)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrUnsupportedType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorw("store chat message", "chat_id", chatID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *ChatHandler) authorize(c *gin.Context, chatID string) bool {
	_, err := h.rooms.Authorize(c.Request.Context(), chatID, c.GetString(middleware.KeyUID), c.GetString(middleware.KeyRole))
	switch {
	case err == nil:
		return true
	case errors.Is(err, chat.ErrInvalidRoom):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
	case errors.Is(err, chat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat member"})
	case errors.Is(err, chat.ErrNotLinked):
		c.JSON(http.StatusForbidden, gin.H{"error": "tenant and landlord are not linked"})
	default:
		h.logger.Errorw("authorize chat", "chat_id", chatID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
	}
	return false
}
