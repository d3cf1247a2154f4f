package models

import "time"

// Session binds an opaque bearer token to an authenticated account.
type Session struct {
	Token     string    `db:"token" json:"token"`
	UID       string    `db:"uid" json:"uid"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	IDToken   string    `db:"id_token" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
