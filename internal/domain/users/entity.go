package users

import "time"

// UserID identifier type
type UserID string

// User represents a registered account. PasswordHash is a bcrypt hash and
// never leaves the backend.
type User struct {
	ID           UserID    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
