package model

import "time"

// Role values stored in users.role and carried in JWT claims.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User mirrors the 'users' table. LastCheckedAt is the notification
// watermark: the moment this user last acknowledged record changes.
// A nil value means the user has never checked.
type User struct {
	ID            uint64     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	PasswordHash  string     `json:"-"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"is_active"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
