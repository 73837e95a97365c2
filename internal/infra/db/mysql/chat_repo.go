package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	domain "github.com/clausewise/clausewise/internal/domain/chat"
)

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// SaveSession insert/update chat session
func (r *ChatRepository) SaveSession(ctx context.Context, s *domain.Session) error {
	const q = `
INSERT INTO chat_sessions (id, document_id, user_id, title, created_at, updated_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE title=VALUES(title), updated_at=VALUES(updated_at);
`
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	_, err := r.db.ExecContext(ctx, q, s.ID, s.DocumentID, s.UserID, s.Title, created, updated)
	return err
}

func (r *ChatRepository) GetSession(ctx context.Context, userID string, id domain.SessionID) (*domain.Session, error) {
	const q = `
SELECT id, document_id, user_id, title, created_at, updated_at
FROM chat_sessions WHERE user_id=? AND id=? LIMIT 1;`
	var s domain.Session
	err := r.db.QueryRowContext(ctx, q, userID, id).Scan(
		&s.ID, &s.DocumentID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ChatRepository) ListSessionsByDocument(ctx context.Context, userID, documentID string) ([]*domain.Session, error) {
	const q = `
SELECT id, document_id, user_id, title, created_at, updated_at
FROM chat_sessions WHERE user_id=? AND document_id=?
ORDER BY updated_at DESC;`
	rows, err := r.db.QueryContext(ctx, q, userID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// DeleteSession removes the session and its messages.
func (r *ChatRepository) DeleteSession(ctx context.Context, userID string, id domain.SessionID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM chat_sessions WHERE user_id=? AND id=?;`, userID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSessionNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id=? AND session_id=?;`, userID, id); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveMessage append satu message
func (r *ChatRepository) SaveMessage(ctx context.Context, m *domain.Message) error {
	const q = `
INSERT INTO chat_messages
(id, session_id, document_id, user_id, role, content, relevant_sections, created_at)
VALUES (?,?,?,?,?,?,?,?);
`
	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var sections any
	if len(m.RelevantSections) > 0 {
		sections = marshalJSON(m.RelevantSections)
	}
	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.SessionID, m.DocumentID, m.UserID, string(m.Role), m.Content, sections, created,
	)
	return err
}

func (r *ChatRepository) ListMessagesByDocument(ctx context.Context, userID, documentID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT id, session_id, document_id, user_id, role, content, relevant_sections, created_at
FROM chat_messages WHERE user_id=? AND document_id=?
ORDER BY created_at ASC LIMIT ?;`
	return r.queryMessages(ctx, q, userID, documentID, limit)
}

func (r *ChatRepository) ListMessagesBySession(ctx context.Context, userID string, id domain.SessionID, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT id, session_id, document_id, user_id, role, content, relevant_sections, created_at
FROM chat_messages WHERE user_id=? AND session_id=?
ORDER BY created_at ASC LIMIT ?;`
	return r.queryMessages(ctx, q, userID, string(id), limit)
}

func (r *ChatRepository) queryMessages(ctx context.Context, q string, args ...any) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		var m domain.Message
		var sections sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.DocumentID, &m.UserID, &m.Role, &m.Content, &sections, &m.CreatedAt); err != nil {
			return nil, err
		}
		if sections.Valid && sections.String != "" {
			_ = json.Unmarshal([]byte(sections.String), &m.RelevantSections)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
