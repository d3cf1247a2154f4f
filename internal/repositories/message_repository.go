package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tenant-portal/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error)
	ListRoomMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error)
	LatestRoomMessages(ctx context.Context, chatID string, limit int) ([]models.ChatMessage, error)
	DeleteMessages(ctx context.Context, ids []int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, chat_id, sender, message, type, created_at`

// CreateMessage appends a message to a room.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	var created models.ChatMessage
	err := r.db.GetContext(ctx, &created, `INSERT INTO chat_messages (chat_id, sender, message, type)
        VALUES ($1, $2, $3, $4) RETURNING `+messageColumns,
		msg.ChatID, msg.Sender, msg.Message, msg.Type)
	return created, err
}

// ListRoomMessages returns every persisted message of a room, oldest first.
func (r *MessageRepo) ListRoomMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	msgs := []models.ChatMessage{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM chat_messages
        WHERE chat_id=$1 ORDER BY created_at ASC, id ASC`, chatID)
	return msgs, err
}

// LatestRoomMessages returns up to limit of the newest messages, newest first.
func (r *MessageRepo) LatestRoomMessages(ctx context.Context, chatID string, limit int) ([]models.ChatMessage, error) {
	msgs := []models.ChatMessage{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM chat_messages
        WHERE chat_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, chatID, limit)
	return msgs, err
}

// DeleteMessages removes the given messages.
func (r *MessageRepo) DeleteMessages(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id = ANY($1)`, pq.Array(ids))
	return err
}
