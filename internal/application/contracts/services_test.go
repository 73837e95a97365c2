package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clausewise/clausewise/internal/domain/analysis"
	domain "github.com/clausewise/clausewise/internal/domain/documents"
	"github.com/clausewise/clausewise/internal/infra/ai/perf"
)

const contractText = `SECTION 1. Services. The Consultant shall provide advisory services to the Client on an ongoing basis.

SECTION 2. Payment. The Client shall pay all fees within 30 days of receiving an invoice from the Consultant.

SECTION 3. Termination. Either party may terminate this agreement with 30 days prior written notice.`

const modelReply = `{
  "summary": "Consulting agreement with standard commercial terms",
  "key_points": ["Net-30 payment", "30 day termination notice"],
  "total_clauses": 9,
  "risk_assessments": [{"category": "Financial", "risk_level": "medium", "description": "No late-payment remedy", "recommendation": "Add late fees"}],
  "suggested_revisions": ["Add a liability cap"],
  "overall_risk_score": 62.8
}`

type fakeDocRepo struct {
	docs map[domain.DocumentID]*domain.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: map[domain.DocumentID]*domain.Document{}}
}

func (r *fakeDocRepo) Save(_ context.Context, d *domain.Document) error {
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *fakeDocRepo) Get(_ context.Context, userID string, id domain.DocumentID) (*domain.Document, error) {
	d, ok := r.docs[id]
	if !ok || d.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*domain.Document, error) {
	var out []*domain.Document
	for _, d := range r.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) GetByHash(_ context.Context, userID, contentHash string) (*domain.Document, error) {
	for _, d := range r.docs {
		if d.UserID == userID && d.ContentHash == contentHash {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDocRepo) UpdateStatus(_ context.Context, id domain.DocumentID, status domain.Status, detail string) error {
	d, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	d.StatusDetail = detail
	return nil
}

func (r *fakeDocRepo) Delete(_ context.Context, userID string, id domain.DocumentID) error {
	d, ok := r.docs[id]
	if !ok || d.UserID != userID {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocRepo) CountByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, d := range r.docs {
		if d.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeBlobStore struct {
	objects map[string][]byte
	removed []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (s *fakeBlobStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.objects[key] = data
	return "http://blobs.local/" + key, nil
}

func (s *fakeBlobStore) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	delete(s.objects, key)
	return nil
}

type fakeAI struct {
	reply string
	err   error
	calls int
}

func (c *fakeAI) Analyze(_ context.Context, _ string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func (c *fakeAI) Answer(_ context.Context, _ string) (string, error) {
	return "", errors.New("not used")
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, ai *fakeAI) (*Service, *fakeDocRepo, *fakeBlobStore) {
	t.Helper()
	repo := newFakeDocRepo()
	blobs := newFakeBlobStore()
	cache, err := lru.New[string, *analysis.Result](16)
	require.NoError(t, err)
	svc := &Service{
		Repo:  repo,
		Blobs: blobs,
		AI:    ai,
		Perf:  perf.NewHistory(10),
		Cache: cache,
		Model: "mistral-large-latest",
		Clock: fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, repo, blobs
}

func uploadSample(t *testing.T, svc *Service, userID string) *domain.Document {
	t.Helper()
	res, err := svc.Upload(context.Background(), UploadCommand{
		UserID:      userID,
		Filename:    "agreement.txt",
		ContentType: "text/plain",
		Data:        []byte(contractText),
	})
	require.NoError(t, err)
	require.False(t, res.Duplicate)
	return res.Document
}

func TestUploadStoresBlobAndText(t *testing.T) {
	svc, _, blobs := newTestService(t, &fakeAI{reply: modelReply})
	doc := uploadSample(t, svc, "user-1")

	assert.Equal(t, "agreement.txt", doc.Filename)
	assert.Equal(t, "txt", doc.FileType)
	assert.Equal(t, domain.StatusPending, doc.Status)
	assert.Equal(t, contractText, doc.TextContent)
	assert.NotEmpty(t, doc.ContentHash)
	assert.Contains(t, doc.StorageURL, doc.StorageKey)
	assert.Len(t, blobs.objects, 1)
}

func TestUploadDeduplicatesByContent(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeAI{reply: modelReply})
	first := uploadSample(t, svc, "user-1")

	res, err := svc.Upload(context.Background(), UploadCommand{
		UserID:      "user-1",
		Filename:    "renamed-copy.txt",
		ContentType: "text/plain",
		Data:        []byte(contractText),
	})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, first.ID, res.Document.ID)
}

func TestUploadSameContentDifferentUsers(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeAI{reply: modelReply})
	a := uploadSample(t, svc, "user-1")
	b := uploadSample(t, svc, "user-2")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAnalyzeHappyPath(t *testing.T) {
	ai := &fakeAI{reply: modelReply}
	svc, repo, _ := newTestService(t, ai)
	doc := uploadSample(t, svc, "user-1")

	res, err := svc.Analyze(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)

	assert.Equal(t, 62.8, res.RiskScore)
	assert.Equal(t, 9, res.TotalClauses)
	assert.Equal(t, "mistral-large-latest", res.ModelUsed)
	assert.Equal(t, 1, ai.calls)

	stored := repo.docs[doc.ID]
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	require.NotNil(t, stored.Analysis)
	assert.Equal(t, res.RiskScore, stored.Analysis.RiskScore)
}

func TestAnalyzeReturnsStoredResult(t *testing.T) {
	ai := &fakeAI{reply: modelReply}
	svc, _, _ := newTestService(t, ai)
	doc := uploadSample(t, svc, "user-1")

	_, err := svc.Analyze(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, ai.calls, "completed analysis must not re-call the model")
}

func TestAnalyzeServesCacheForIdenticalContent(t *testing.T) {
	ai := &fakeAI{reply: modelReply}
	svc, _, _ := newTestService(t, ai)

	a := uploadSample(t, svc, "user-1")
	b := uploadSample(t, svc, "user-2")

	_, err := svc.Analyze(context.Background(), "user-1", a.ID)
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), "user-2", b.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, ai.calls, "identical content must hit the cache")
}

func TestAnalyzeModelFailureMarksFailed(t *testing.T) {
	ai := &fakeAI{err: errors.New("model exploded")}
	svc, repo, _ := newTestService(t, ai)
	doc := uploadSample(t, svc, "user-1")

	_, err := svc.Analyze(context.Background(), "user-1", doc.ID)
	require.Error(t, err)

	stored := repo.docs[doc.ID]
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Contains(t, stored.StatusDetail, "model exploded")
}

func TestAnalyzeTooShortDocument(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeAI{reply: modelReply})

	res, err := svc.Upload(context.Background(), UploadCommand{
		UserID:   "user-1",
		Filename: "tiny.txt",
		Data:     []byte("too short"),
	})
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), "user-1", res.Document.ID)
	assert.ErrorIs(t, err, ErrNotAnalyzable)
}

func TestAnalyzeWrongUser(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeAI{reply: modelReply})
	doc := uploadSample(t, svc, "user-1")

	_, err := svc.Analyze(context.Background(), "user-2", doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesBlob(t *testing.T) {
	svc, repo, blobs := newTestService(t, &fakeAI{reply: modelReply})
	doc := uploadSample(t, svc, "user-1")

	require.NoError(t, svc.Delete(context.Background(), "user-1", doc.ID))
	assert.Empty(t, repo.docs)
	assert.Equal(t, []string{doc.StorageKey}, blobs.removed)
}

func TestStatusIncludesEstimate(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeAI{reply: modelReply})
	doc := uploadSample(t, svc, "user-1")

	st, err := svc.Status(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, st.Status)
	assert.Greater(t, st.Estimate.EstimatedSeconds, 0)
	assert.NotEmpty(t, st.Estimate.Complexity)
}

func TestUploadKeyUniquePerDocument(t *testing.T) {
	svc, _, blobs := newTestService(t, &fakeAI{reply: modelReply})
	for i := 0; i < 3; i++ {
		data := []byte(contractText + strings.Repeat("x", i+1))
		_, err := svc.Upload(context.Background(), UploadCommand{
			UserID:   "user-1",
			Filename: fmt.Sprintf("v%d.txt", i),
			Data:     data,
		})
		require.NoError(t, err)
	}
	assert.Len(t, blobs.objects, 3)
}
