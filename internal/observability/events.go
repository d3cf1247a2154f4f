package observability

import (
	"context"
	"time"
)

// RoomEventsKey is the routing key chat socket lifecycle events go out on.
const RoomEventsKey = "ws_events.chats"

// RoomEvent records a participant's socket joining, leaving or failing in
// a chat room.
type RoomEvent struct {
	EventType  string         `json:"event_type"`
	EventName  string         `json:"event_name"`
	OccurredAt string         `json:"occurred_at"`
	ChatID     string         `json:"chat_id"`
	Socket     SocketDetail   `json:"ws"`
	Identity   SocketIdentity `json:"identity"`
}

type SocketDetail struct {
	ConnID     string `json:"conn_id"`
	DurationMS int64  `json:"duration_ms"`
	Reason     string `json:"reason,omitempty"`
}

type SocketIdentity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
	IP       string `json:"ip,omitempty"`
}

// PublishRoomEvent counts the event and publishes it with correlation headers.
func PublishRoomEvent(ctx context.Context, event RoomEvent, requestID, traceID string) error {
	IncWSEvent("chat", event.EventName)
	event.EventType = "ws_events"
	if event.OccurredAt == "" {
		event.OccurredAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	return PublishEvent(ctx, RoomEventsKey, event, correlationHeaders(requestID, traceID))
}

func correlationHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
