package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/clausewise/clausewise/internal/domain/ai"
	domain "github.com/clausewise/clausewise/internal/domain/chat"
	"github.com/clausewise/clausewise/internal/domain/documents"
)

const docText = `SECTION 1. Payment terms require all invoices to be settled within 30 days of receipt by the Client without deduction.`

type fakeChatRepo struct {
	sessions map[domain.SessionID]*domain.Session
	messages []*domain.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{sessions: map[domain.SessionID]*domain.Session{}}
}

func (r *fakeChatRepo) SaveSession(_ context.Context, s *domain.Session) error {
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeChatRepo) GetSession(_ context.Context, userID string, id domain.SessionID) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeChatRepo) ListSessionsByDocument(_ context.Context, userID, documentID string) ([]*domain.Session, error) {
	var out []*domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.DocumentID == documentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) DeleteSession(_ context.Context, userID string, id domain.SessionID) error {
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeChatRepo) SaveMessage(_ context.Context, m *domain.Message) error {
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeChatRepo) ListMessagesByDocument(_ context.Context, userID, documentID string, limit int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if m.UserID == userID && m.DocumentID == documentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) ListMessagesBySession(_ context.Context, userID string, id domain.SessionID, limit int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if m.UserID == userID && m.SessionID == id {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeDocs struct {
	docs map[documents.DocumentID]*documents.Document
}

func (r *fakeDocs) Save(context.Context, *documents.Document) error { return nil }
func (r *fakeDocs) ListByUser(context.Context, string, int, int) ([]*documents.Document, error) {
	return nil, nil
}
func (r *fakeDocs) GetByHash(context.Context, string, string) (*documents.Document, error) {
	return nil, nil
}
func (r *fakeDocs) UpdateStatus(context.Context, documents.DocumentID, documents.Status, string) error {
	return nil
}
func (r *fakeDocs) Delete(context.Context, string, documents.DocumentID) error { return nil }
func (r *fakeDocs) CountByUser(context.Context, string) (int, error)           { return 0, nil }

func (r *fakeDocs) Get(_ context.Context, userID string, id documents.DocumentID) (*documents.Document, error) {
	d, ok := r.docs[id]
	if !ok || d.UserID != userID {
		return nil, ErrDocumentNotFound
	}
	return d, nil
}

type fakeAI struct {
	answer string
	err    error
}

func (c *fakeAI) Analyze(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func (c *fakeAI) Answer(context.Context, string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(ai *fakeAI) (*Service, *fakeChatRepo) {
	repo := newFakeChatRepo()
	docs := &fakeDocs{docs: map[documents.DocumentID]*documents.Document{
		"doc-1": {ID: "doc-1", UserID: "user-1", TextContent: docText},
		"doc-2": {ID: "doc-2", UserID: "user-1", TextContent: "too short"},
	}}
	svc := &Service{
		Repo:  repo,
		Docs:  docs,
		AI:    ai,
		Clock: fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, repo
}

func TestCreateSession(t *testing.T) {
	svc, _ := newTestService(&fakeAI{})
	sess, err := svc.CreateSession(context.Background(), "user-1", "doc-1", "")
	require.NoError(t, err)
	assert.Equal(t, defaultTitle, sess.Title)
	assert.Equal(t, "doc-1", sess.DocumentID)
}

func TestCreateSessionUnknownDocument(t *testing.T) {
	svc, _ := newTestService(&fakeAI{})
	_, err := svc.CreateSession(context.Background(), "user-1", "doc-missing", "")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSendRecordsBothTurns(t *testing.T) {
	svc, repo := newTestService(&fakeAI{answer: "Invoices are due within **30 days** of receipt."})
	sess, err := svc.CreateSession(context.Background(), "user-1", "doc-1", "")
	require.NoError(t, err)

	res, err := svc.Send(context.Background(), SendCommand{
		UserID:    "user-1",
		SessionID: sess.ID,
		Question:  "How quickly must invoices be paid?",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleUser, res.Question.Role)
	assert.Equal(t, domain.RoleAssistant, res.Answer.Role)
	assert.NotEmpty(t, res.Answer.Content)
	require.Len(t, repo.messages, 2)

	// The first question becomes the session title.
	assert.Equal(t, "How quickly must invoices be paid?", repo.sessions[sess.ID].Title)
}

func TestSendDegradesOnQuota(t *testing.T) {
	svc, repo := newTestService(&fakeAI{err: domai.ErrQuotaExceeded})
	sess, err := svc.CreateSession(context.Background(), "user-1", "doc-1", "Billing questions")
	require.NoError(t, err)

	res, err := svc.Send(context.Background(), SendCommand{
		UserID:    "user-1",
		SessionID: sess.ID,
		Question:  "What are the payment terms?",
	})
	require.NoError(t, err)
	assert.Equal(t, busyAnswer, res.Answer.Content)
	assert.Len(t, repo.messages, 2, "the question must still be recorded")
}

func TestSendDegradesOnModelError(t *testing.T) {
	svc, _ := newTestService(&fakeAI{err: errors.New("boom")})
	sess, err := svc.CreateSession(context.Background(), "user-1", "doc-1", "")
	require.NoError(t, err)

	res, err := svc.Send(context.Background(), SendCommand{
		UserID:    "user-1",
		SessionID: sess.ID,
		Question:  "Anything?",
	})
	require.NoError(t, err)
	assert.Equal(t, failedAnswer, res.Answer.Content)
}

func TestSendUnreadableDocument(t *testing.T) {
	svc, _ := newTestService(&fakeAI{answer: "irrelevant"})
	sess, err := svc.CreateSession(context.Background(), "user-1", "doc-2", "")
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), SendCommand{
		UserID:    "user-1",
		SessionID: sess.ID,
		Question:  "What does it say?",
	})
	assert.ErrorIs(t, err, ErrDocumentNotReadable)
}

func TestSendWrongUserSession(t *testing.T) {
	svc, _ := newTestService(&fakeAI{answer: "irrelevant"})
	sess, err := svc.CreateSession(context.Background(), "user-1", "doc-1", "")
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), SendCommand{
		UserID:    "user-2",
		SessionID: sess.ID,
		Question:  "Can I see this?",
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSendEmptyQuestion(t *testing.T) {
	svc, _ := newTestService(&fakeAI{})
	_, err := svc.Send(context.Background(), SendCommand{
		UserID:    "user-1",
		SessionID: "whatever",
		Question:  "   ",
	})
	assert.Error(t, err)
}

func TestSessionTitleTruncation(t *testing.T) {
	long := "Could you please walk me through every single clause of this very long agreement in detail"
	got := sessionTitle(long)
	assert.LessOrEqual(t, len(got), titleMaxChars+3)
	assert.Contains(t, got, "...")
}

func TestMessagesRequiresOwnership(t *testing.T) {
	svc, _ := newTestService(&fakeAI{answer: "fine"})
	sess, err := svc.CreateSession(context.Background(), "user-1", "doc-1", "")
	require.NoError(t, err)

	_, err = svc.Messages(context.Background(), "user-2", sess.ID, 10)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
