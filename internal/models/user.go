package models

import "time"

const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
)

// ValidRole reports whether role is one the portal understands.
func ValidRole(role string) bool {
	return role == RoleTenant || role == RoleLandlord
}

// User is the profile document stored for every account.
type User struct {
	UID           string    `db:"uid" json:"uid"`
	Email         string    `db:"email" json:"email"`
	Username      string    `db:"username" json:"username,omitempty"`
	Role          string    `db:"role" json:"role"`
	State         string    `db:"state" json:"state,omitempty"`
	Country       string    `db:"country" json:"country,omitempty"`
	LandlordEmail string    `db:"landlord_email" json:"landlord,omitempty"`
	LandlordUID   string    `db:"landlord_uid" json:"landlord_uid,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// DisplayName is what prompts and chat notices call the user.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	State    string `json:"state"`
	Country  string `json:"country"`
}

// AttachedTenant is the landlord-side half of a landlord/tenant linkage.
type AttachedTenant struct {
	LandlordUID string    `db:"landlord_uid" json:"-"`
	TenantUID   string    `db:"tenant_uid" json:"uid"`
	Email       string    `db:"email" json:"email"`
	AttachedAt  time.Time `db:"attached_at" json:"attached_at"`
}
