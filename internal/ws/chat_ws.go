package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"tenant-portal/internal/chat"
	"tenant-portal/internal/models"
	"tenant-portal/internal/observability"
)

const maxFrameSize = 8 << 10

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (models.Session, error)
}

// RoomService is the part of the chat service the socket needs.
type RoomService interface {
	Authorize(ctx context.Context, chatID, uid, role string) (string, error)
	Send(ctx context.Context, chatID, sender, text, msgType string) (models.ChatMessage, error)
	JoinNotice(chatID, who string) models.ChatMessage
}

// ChatWebSocketHandler handles chat websocket connections.
type ChatWebSocketHandler struct {
	hub      *Hub
	rooms    RoomService
	sessions SessionResolver
	logger   *zap.SugaredLogger
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(hub *Hub, rooms RoomService, sessions SessionResolver, logger *zap.SugaredLogger) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{hub: hub, rooms: rooms, sessions: sessions, logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundFrame is what clients send over the socket.
type inboundFrame struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Handle authenticates, joins the room and relays inbound messages.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	chatID := c.Param("chat_id")

	ctx, span := otel.Tracer("tenant-portal/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token = c.Query("token")
	}
	session, err := h.sessions.Resolve(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if _, err := h.rooms.Authorize(ctx, chatID, session.UID, session.Role); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, chat.ErrInvalidRoom) {
			status = http.StatusBadRequest
		} else if !errors.Is(err, chat.ErrNotParticipant) && !errors.Is(err, chat.ErrNotLinked) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": "not authorized for chat"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "chat_id", chatID, "error", err)
		return
	}
	conn.SetReadLimit(maxFrameSize)

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      session.UID,
		Email:       session.Email,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddChatClient(chatID, conn, info)
	observability.IncWSActive("chat")
	// the handshake context ends with this handler
	connCtx := context.WithoutCancel(ctx)
	publishWSEvent(connCtx, chatID, "ws_connect", info, "")

	h.rooms.JoinNotice(chatID, session.Email)

	go h.readLoop(connCtx, chatID, conn, info)
}

func (h *ChatWebSocketHandler) readLoop(ctx context.Context, chatID string, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.RemoveChatClient(chatID, conn)
		observability.DecWSActive("chat")
		publishWSEvent(ctx, chatID, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				publishWSEvent(ctx, chatID, "ws_error", info, closeReason)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.logger.Debugw("dropping malformed frame", "chat_id", chatID, "conn_id", info.ConnID, "error", err)
			continue
		}
		_, err = h.rooms.Send(ctx, chatID, info.Email, frame.Message, frame.Type)
		switch {
		case err == nil, errors.Is(err, chat.ErrEmptyMessage):
		case errors.Is(err, chat.ErrUnsupportedType):
			h.logger.Debugw("dropping non-text frame", "chat_id", chatID, "conn_id", info.ConnID, "type", frame.Type)
		default:
			h.logger.Warnw("failed to persist chat message", "chat_id", chatID, "error", err)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
