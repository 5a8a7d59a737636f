package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin can create events, caches, invites and change settings.
	RoleAdmin Role = "admin"
	// RolePlayer can search for caches and claim them.
	RolePlayer Role = "player"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePlayer
}

// User represents an authenticated account.
type User struct {
	Entity
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	InviteID     string     `json:"invite_id,omitempty"` // invite redeemed at registration
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
