package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tenant-portal/internal/models"
	"tenant-portal/internal/observability"
)

const writeWait = 10 * time.Second

// subscriber pairs a connection with its metadata. gorilla connections
// allow one concurrent writer, so writes go through mu.
type subscriber struct {
	conn *websocket.Conn
	info ConnInfo
	mu   sync.Mutex
}

// Hub maintains active websocket rooms.
type Hub struct {
	chatRooms map[string]map[*websocket.Conn]*subscriber
	mu        sync.RWMutex
	logger    *zap.SugaredLogger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		chatRooms: make(map[string]map[*websocket.Conn]*subscriber),
		logger:    logger,
	}
}

// AddChatClient registers a websocket connection to a chat room.
func (h *Hub) AddChatClient(chatID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.chatRooms[chatID]; !ok {
		h.chatRooms[chatID] = make(map[*websocket.Conn]*subscriber)
	}
	h.chatRooms[chatID][conn] = &subscriber{conn: conn, info: info}
}

// RemoveChatClient removes a chat websocket connection.
func (h *Hub) RemoveChatClient(chatID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.chatRooms[chatID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.chatRooms, chatID)
		}
	}
}

// RoomSize reports how many connections are subscribed to a room.
func (h *Hub) RoomSize(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chatRooms[chatID])
}

// BroadcastChatMessage sends message to all clients in a chat.
func (h *Hub) BroadcastChatMessage(chatID string, msg models.ChatMessage) {
	payload, err := json.Marshal(models.ChatEvent{Type: "message", Message: &msg})
	if err != nil {
		h.logger.Errorw("marshal chat event", "error", err)
		return
	}
	h.broadcast(chatID, payload)
}

func (h *Hub) broadcast(chatID string, payload []byte) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.chatRooms[chatID]))
	for _, s := range h.chatRooms[chatID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if s.conn == nil {
			continue
		}
		if err := s.write(payload); err != nil {
			h.logger.Warnw("websocket write error", "chat_id", chatID, "conn_id", s.info.ConnID, "error", err)
			s.conn.Close()
			h.RemoveChatClient(chatID, s.conn)
			h.publishWSError(chatID, s.info, err)
		}
	}
}

func (s *subscriber) write(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Hub) publishWSError(chatID string, info ConnInfo, err error) {
	publishWSEvent(context.Background(), chatID, "ws_error", info, err.Error())
}

// publishWSEvent reports a connection lifecycle event on the bus and in metrics.
func publishWSEvent(ctx context.Context, chatID, event string, info ConnInfo, reason string) {
	duration := int64(0)
	if !info.ConnectedAt.IsZero() {
		duration = time.Since(info.ConnectedAt).Milliseconds()
	}
	_ = observability.PublishRoomEvent(ctx, observability.RoomEvent{
		EventName: event,
		ChatID:    chatID,
		Socket:    observability.SocketDetail{ConnID: info.ConnID, DurationMS: duration, Reason: reason},
		Identity: observability.SocketIdentity{
			UserID:   info.UserID,
			Email:    info.Email,
			DeviceID: info.DeviceID,
			IP:       info.IP,
		},
	}, info.RequestID, info.TraceID)
}
