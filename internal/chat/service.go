package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"tenant-portal/internal/models"
	"tenant-portal/internal/observability"
	"tenant-portal/internal/repositories"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrUnsupportedType = errors.New("only text messages can be sent")
)

// Broadcaster relays a message to the live subscribers of a room.
type Broadcaster interface {
	BroadcastChatMessage(chatID string, msg models.ChatMessage)
}

// Service relays, persists and trims room messages.
type Service struct {
	users        repositories.UserRepository
	messages     repositories.MessageRepository
	broadcaster  Broadcaster
	retain       int
	historyLimit int
	locks        *roomLocks
	now          func() time.Time
	logger       *zap.SugaredLogger
}

// NewService builds a Service. retain is the per-room message cap and
// historyLimit how many messages History returns.
func NewService(users repositories.UserRepository, messages repositories.MessageRepository, broadcaster Broadcaster, retain, historyLimit int, logger *zap.SugaredLogger) *Service {
	if retain <= 0 {
		retain = DefaultRetention
	}
	if historyLimit <= 0 {
		historyLimit = retain
	}
	return &Service{
		users:        users,
		messages:     messages,
		broadcaster:  broadcaster,
		retain:       retain,
		historyLimit: historyLimit,
		locks:        newRoomLocks(),
		now:          time.Now,
		logger:       logger,
	}
}

// Authorize checks that uid takes part in the room and that the two
// participants are a linked landlord and tenant. It returns the peer uid.
func (s *Service) Authorize(ctx context.Context, chatID, uid, role string) (string, error) {
	peer, err := Peer(chatID, uid)
	if err != nil {
		return "", err
	}

	landlord, tenant := peer, uid
	if role == models.RoleLandlord {
		landlord, tenant = uid, peer
	}
	linked, err := s.users.IsAttached(ctx, landlord, tenant)
	if err != nil {
		return "", fmt.Errorf("check linkage: %w", err)
	}
	if !linked {
		return "", ErrNotLinked
	}
	return peer, nil
}

// Rooms lists the rooms the user can open.
func (s *Service) Rooms(ctx context.Context, user models.User) ([]models.ChatRoom, error) {
	rooms := []models.ChatRoom{}
	if user.Role == models.RoleTenant {
		if user.LandlordUID != "" {
			rooms = append(rooms, models.ChatRoom{
				ChatID:    RoomID(user.UID, user.LandlordUID),
				PeerUID:   user.LandlordUID,
				PeerEmail: user.LandlordEmail,
			})
		}
		return rooms, nil
	}

	tenants, err := s.users.ListTenants(ctx, user.UID)
	if err != nil {
		return nil, err
	}
	for _, t := range tenants {
		rooms = append(rooms, models.ChatRoom{ChatID: RoomID(user.UID, t.TenantUID), PeerUID: t.TenantUID, PeerEmail: t.Email})
	}
	return rooms, nil
}

// History returns the newest messages of a room, oldest first.
func (s *Service) History(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	msgs, err := s.messages.LatestRoomMessages(ctx, chatID, s.historyLimit)
	if err != nil {
		return nil, err
	}
	sortChronologically(msgs)
	return msgs, nil
}

// Send broadcasts a message to the room, then persists it and applies
// retention. Participants only send text; system messages come from the
// portal itself. The returned message carries the stored id when
// persisting succeeded.
func (s *Service) Send(ctx context.Context, chatID, sender, text, msgType string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	switch strings.ToLower(strings.TrimSpace(msgType)) {
	case "", models.MessageTypeText:
		msgType = models.MessageTypeText
	default:
		return models.ChatMessage{}, ErrUnsupportedType
	}

	msg := models.ChatMessage{ChatID: chatID, Sender: sender, Message: text, Type: msgType, Timestamp: s.now().UTC()}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastChatMessage(chatID, msg)
	}
	return s.Append(ctx, msg)
}

// Append persists a message and trims the room down to the retention cap.
func (s *Service) Append(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	unlock := s.locks.lock(msg.ChatID)
	defer unlock()

	stored, err := s.messages.CreateMessage(ctx, msg)
	if err != nil {
		return msg, fmt.Errorf("store message: %w", err)
	}

	trimmed, err := Trim(ctx, s.messages, msg.ChatID, s.retain)
	if err != nil {
		// the message is stored; the next append retries the trim
		s.logger.Warnw("chat retention trim failed", "chat_id", msg.ChatID, "error", err)
		return stored, nil
	}
	if trimmed > 0 {
		observability.AddChatMessagesTrimmed(trimmed)
		s.logger.Debugw("chat retention trimmed room", "chat_id", msg.ChatID, "deleted", trimmed)
	}
	return stored, nil
}

// JoinNotice is the system message broadcast when someone opens a room.
// It is not persisted.
func (s *Service) JoinNotice(chatID, who string) models.ChatMessage {
	msg := models.ChatMessage{
		ChatID:    chatID,
		Sender:    "System",
		Message:   who + " has joined the chat.",
		Type:      models.MessageTypeSystem,
		Timestamp: s.now().UTC(),
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastChatMessage(chatID, msg)
	}
	return msg
}

func sortChronologically(msgs []models.ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
