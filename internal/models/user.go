package models

import "time"

// User captures application-facing fields for an authenticated identity.
// Username is set only for self-registered users; bootstrap-created users
// carry email only.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	IsConfirmed  bool      `json:"isConfirmed"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}
