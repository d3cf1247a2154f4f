package models

import "time"

const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// ChatMessage is a message exchanged in a landlord/tenant room.
type ChatMessage struct {
	ID        int       `db:"id" json:"id,omitempty"`
	ChatID    string    `db:"chat_id" json:"chat_id"`
	Sender    string    `db:"sender" json:"sender"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// ChatEvent is broadcast through websockets.
type ChatEvent struct {
	Type    string       `json:"type"`
	Message *ChatMessage `json:"message,omitempty"`
}

// ChatRoom describes a room the caller is allowed to open.
type ChatRoom struct {
	ChatID    string `json:"chat_id"`
	PeerUID   string `json:"peer_uid"`
	PeerEmail string `json:"peer_email"`
}
