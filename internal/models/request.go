package models

import "time"

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
)

// Request is a landlord's invitation for a tenant to link accounts.
type Request struct {
	ID            string    `db:"id" json:"id"`
	TenantEmail   string    `db:"tenant_email" json:"tenant_email"`
	LandlordEmail string    `db:"landlord_email" json:"landlord_email"`
	LandlordUID   string    `db:"landlord_uid" json:"landlord_uid"`
	Status        string    `db:"status" json:"status"`
	Timestamp     time.Time `db:"created_at" json:"timestamp"`
}
