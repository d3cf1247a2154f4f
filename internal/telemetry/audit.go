package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tenant-portal/internal/observability"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
	Close() error
}

// Routing keys of the domain events the portal emits.
const (
	RequestCreated  = "requests.created"
	RequestAccepted = "requests.accepted"
	IssueCreated    = "issues.created"
	IssueResolved   = "issues.resolved"
	DebugPing       = "debug.ping"
)

type Emitter struct {
	publisher   Publisher
	auditKey    string
	service     string
	environment string
	logger      *zap.SugaredLogger
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *string      `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// DomainEnvelope wraps a business event such as a created request.
type DomainEnvelope struct {
	SchemaVersion int     `json:"schema_version"`
	EventType     string  `json:"event_type"`
	OccurredAt    string  `json:"occurred_at"`
	Service       string  `json:"service"`
	Environment   string  `json:"environment"`
	RequestID     string  `json:"request_id"`
	UserID        *string `json:"user_id,omitempty"`
	Payload       any     `json:"payload"`
}

func NewEmitter(publisher Publisher, service, environment string, logger *zap.SugaredLogger) *Emitter {
	return &Emitter{
		publisher:   publisher,
		auditKey:    "audit." + service,
		service:     service,
		environment: environment,
		logger:      logger,
	}
}

// Audit publishes a human-readable audit line.
func (e *Emitter) Audit(ctx context.Context, level, text, requestID string, userID *string) {
	if e == nil || e.publisher == nil {
		return
	}

	e.logger.Infow("audit emit", "level", level, "request_id", requestID, "user_id", deref(userID), "text", text)
	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       AuditPayload{Level: level, Text: text},
	}

	if err := observability.Publish(ctx, e.publisher, e.auditKey, envelope, headers(requestID)); err != nil {
		e.logger.Warnw("audit publish failed", "error", err)
	}
}

// Event publishes a domain event under routingKey.
func (e *Emitter) Event(ctx context.Context, routingKey, requestID string, userID *string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := DomainEnvelope{
		SchemaVersion: 1,
		EventType:     routingKey,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       payload,
	}
	if err := observability.Publish(ctx, e.publisher, routingKey, envelope, headers(requestID)); err != nil {
		e.logger.Warnw("event publish failed", "routing_key", routingKey, "error", err)
	}
}

func headers(requestID string) map[string]string {
	h := map[string]string{}
	if requestID != "" {
		h["x-request-id"] = requestID
	}
	return h
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
