package chat

import "time"

// SessionID identifier type
type SessionID string

// Role enum for message authorship
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session groups the messages of one conversation about one document.
type Session struct {
	ID         SessionID `json:"id"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Message is a single chat turn. RelevantSections is filled on assistant
// messages from the sanitizer's section extraction.
type Message struct {
	ID               string    `json:"id"`
	SessionID        SessionID `json:"session_id"`
	DocumentID       string    `json:"document_id"`
	UserID           string    `json:"user_id"`
	Role             Role      `json:"role"`
	Content          string    `json:"content"`
	RelevantSections []string  `json:"relevant_sections,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
