package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken is returned on registration with an already-registered email.
var ErrEmailTaken = errors.New("email already registered")

// Repository port for user persistence
type Repository interface {
	Save(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id UserID) (*User, error)
}
