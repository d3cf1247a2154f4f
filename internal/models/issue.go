package models

import "time"

const (
	IssuePending  = "pending"
	IssueResolved = "resolved"
)

// Issue is a maintenance problem reported by a tenant.
type Issue struct {
	ID          int       `db:"id" json:"id"`
	Label       string    `db:"label" json:"label"`
	TenantUID   string    `db:"tenant_uid" json:"tenant"`
	Status      string    `db:"status" json:"status"`
	AIAdvice    string    `db:"ai_advice" json:"ai_advice"`
	Days        int       `db:"days" json:"days"`
	PhotoURL    string    `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	TenantEmail string    `db:"tenant_email" json:"tenant_email,omitempty"`
}
