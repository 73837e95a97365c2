package chat

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/clausewise/clausewise/internal/application"
	domai "github.com/clausewise/clausewise/internal/domain/ai"
	domain "github.com/clausewise/clausewise/internal/domain/chat"
	"github.com/clausewise/clausewise/internal/domain/documents"
	"github.com/clausewise/clausewise/internal/infra/ai/normalize"
	"github.com/clausewise/clausewise/internal/infra/ai/prompt"
)

// ErrDocumentNotFound is returned when the chat target document is missing.
var ErrDocumentNotFound = errors.New("document not found")

// ErrDocumentNotReadable is returned when the document has no usable text.
var ErrDocumentNotReadable = errors.New("document has no readable text to chat about")

// Friendly answers used when the model call fails; the user message is still
// recorded so the conversation stays consistent.
const (
	busyAnswer    = "The AI service is very busy right now. Please try again in a few moments."
	failedAnswer  = "I ran into a problem answering that question. Please try asking again."
	defaultTitle  = "New conversation"
	titleMaxChars = 60
)

// Service implements use-cases untuk document chat.
type Service struct {
	Repo  domain.Repository
	Docs  documents.Repository
	AI    domai.Client
	Clock application.Clock
}

// CreateSession opens a conversation about one owned document.
func (s *Service) CreateSession(ctx context.Context, userID, documentID, title string) (*domain.Session, error) {
	if _, err := s.getDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	sess := &domain.Session{
		ID:         domain.SessionID(uuid.New().String()),
		DocumentID: documentID,
		UserID:     userID,
		Title:      sessionTitle(title),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

type SendCommand struct {
	UserID    string
	SessionID domain.SessionID
	Question  string
}

type SendResult struct {
	Question *domain.Message `json:"question"`
	Answer   *domain.Message `json:"answer"`
}

// Send asks a question about the session's document and records both turns.
// Model failures degrade to a friendly answer instead of an error so the
// conversation history never ends up with a question and no reply.
func (s *Service) Send(ctx context.Context, cmd SendCommand) (SendResult, error) {
	question := strings.TrimSpace(cmd.Question)
	if question == "" {
		return SendResult{}, errors.New("question is empty")
	}

	sess, err := s.Repo.GetSession(ctx, cmd.UserID, cmd.SessionID)
	if err != nil {
		return SendResult{}, err
	}
	doc, err := s.getDocument(ctx, cmd.UserID, sess.DocumentID)
	if err != nil {
		return SendResult{}, err
	}
	if !doc.SupportsChat() {
		return SendResult{}, ErrDocumentNotReadable
	}

	now := s.Clock.Now()
	userMsg := &domain.Message{
		ID:         uuid.New().String(),
		SessionID:  sess.ID,
		DocumentID: sess.DocumentID,
		UserID:     cmd.UserID,
		Role:       domain.RoleUser,
		Content:    question,
		CreatedAt:  now,
	}
	if err := s.Repo.SaveMessage(ctx, userMsg); err != nil {
		return SendResult{}, err
	}

	answer, sections := s.answer(ctx, question, doc.TextContent)

	assistantMsg := &domain.Message{
		ID:               uuid.New().String(),
		SessionID:        sess.ID,
		DocumentID:       sess.DocumentID,
		UserID:           cmd.UserID,
		Role:             domain.RoleAssistant,
		Content:          answer,
		RelevantSections: sections,
		CreatedAt:        s.Clock.Now(),
	}
	if err := s.Repo.SaveMessage(ctx, assistantMsg); err != nil {
		return SendResult{}, err
	}

	if sess.Title == defaultTitle {
		sess.Title = sessionTitle(question)
	}
	sess.UpdatedAt = s.Clock.Now()
	_ = s.Repo.SaveSession(ctx, sess)

	return SendResult{Question: userMsg, Answer: assistantMsg}, nil
}

func (s *Service) answer(ctx context.Context, question, content string) (string, []string) {
	raw, err := s.AI.Answer(ctx, prompt.QAPrompt(question, content))
	if err != nil {
		if errors.Is(err, domai.ErrQuotaExceeded) {
			return busyAnswer, nil
		}
		return failedAnswer, nil
	}
	answer := normalize.Answer(raw, question)
	return answer, normalize.RelevantSections(answer)
}

func (s *Service) ListSessions(ctx context.Context, userID, documentID string) ([]*domain.Session, error) {
	return s.Repo.ListSessionsByDocument(ctx, userID, documentID)
}

func (s *Service) DeleteSession(ctx context.Context, userID string, id domain.SessionID) error {
	return s.Repo.DeleteSession(ctx, userID, id)
}

func (s *Service) Messages(ctx context.Context, userID string, id domain.SessionID, limit int) ([]*domain.Message, error) {
	if _, err := s.Repo.GetSession(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Repo.ListMessagesBySession(ctx, userID, id, limit)
}

func (s *Service) History(ctx context.Context, userID, documentID string, limit int) ([]*domain.Message, error) {
	return s.Repo.ListMessagesByDocument(ctx, userID, documentID, limit)
}

func (s *Service) getDocument(ctx context.Context, userID, documentID string) (*documents.Document, error) {
	doc, err := s.Docs.Get(ctx, userID, documents.DocumentID(documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func sessionTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultTitle
	}
	if len(s) > titleMaxChars {
		s = strings.TrimSpace(s[:titleMaxChars]) + "..."
	}
	return s
}
