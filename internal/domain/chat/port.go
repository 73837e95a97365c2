package chat

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned when a session lookup misses or the caller
// does not own the session.
var ErrSessionNotFound = errors.New("chat session not found")

// Repository port for chat persistence
type Repository interface {
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, userID string, id SessionID) (*Session, error)
	ListSessionsByDocument(ctx context.Context, userID, documentID string) ([]*Session, error)
	DeleteSession(ctx context.Context, userID string, id SessionID) error

	SaveMessage(ctx context.Context, m *Message) error
	ListMessagesByDocument(ctx context.Context, userID, documentID string, limit int) ([]*Message, error)
	ListMessagesBySession(ctx context.Context, userID string, id SessionID, limit int) ([]*Message, error)
}
