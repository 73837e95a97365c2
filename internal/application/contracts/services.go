package contracts

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/clausewise/clausewise/internal/application"
	domai "github.com/clausewise/clausewise/internal/domain/ai"
	"github.com/clausewise/clausewise/internal/domain/analysis"
	domain "github.com/clausewise/clausewise/internal/domain/documents"
	"github.com/clausewise/clausewise/internal/infra/ai/normalize"
	"github.com/clausewise/clausewise/internal/infra/ai/perf"
	"github.com/clausewise/clausewise/internal/infra/ai/prompt"
	"github.com/clausewise/clausewise/internal/infra/extract"
)

// ErrNotFound is returned when a document lookup misses for the caller.
var ErrNotFound = errors.New("document not found")

// ErrNotAnalyzable is returned when extraction produced too little text.
var ErrNotAnalyzable = errors.New("document has no readable text to analyze")

// Service implements use-cases untuk contract documents.
// Safe for concurrent use; the cache and perf history guard themselves.
type Service struct {
	Repo  domain.Repository
	Blobs domain.BlobStore
	AI    domai.Client
	Perf  *perf.History
	Cache *lru.Cache[string, *analysis.Result]
	Model string
	Clock application.Clock
}

type UploadCommand struct {
	UserID      string
	Filename    string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	Document  *domain.Document `json:"document"`
	Duplicate bool             `json:"duplicate"`
}

// Upload stores the raw file, extracts its text and creates the document
// record. A re-upload of identical content returns the existing document.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (UploadResult, error) {
	sum := sha256.Sum256(cmd.Data)
	contentHash := hex.EncodeToString(sum[:])

	if existing, err := s.Repo.GetByHash(ctx, cmd.UserID, contentHash); err != nil {
		return UploadResult{}, err
	} else if existing != nil {
		return UploadResult{Document: existing, Duplicate: true}, nil
	}

	text, err := extract.Text(cmd.Filename, cmd.Data)
	if err != nil {
		return UploadResult{}, err
	}

	id := domain.DocumentID(uuid.New().String())
	key := fmt.Sprintf("%s/%s/%s", cmd.UserID, id, filepath.Base(cmd.Filename))
	url, err := s.Blobs.Put(ctx, key, cmd.Data, cmd.ContentType)
	if err != nil {
		return UploadResult{}, err
	}

	doc := &domain.Document{
		ID:          id,
		UserID:      cmd.UserID,
		Filename:    filepath.Base(cmd.Filename),
		FileSize:    int64(len(cmd.Data)),
		FileType:    strings.ToLower(strings.TrimPrefix(filepath.Ext(cmd.Filename), ".")),
		ContentHash: contentHash,
		StorageKey:  key,
		StorageURL:  url,
		TextContent: text,
		UploadedAt:  s.Clock.Now(),
		Status:      domain.StatusPending,
	}
	if err := s.Repo.Save(ctx, doc); err != nil {
		return UploadResult{}, err
	}
	return UploadResult{Document: doc}, nil
}

// Analyze runs the AI pipeline on a document and persists the result.
// Identical content is served from the in-memory cache without a model call.
func (s *Service) Analyze(ctx context.Context, userID string, id domain.DocumentID) (*analysis.Result, error) {
	doc, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.StatusCompleted && doc.Analysis != nil {
		return doc.Analysis, nil
	}
	if !doc.SupportsAnalysis() {
		return nil, ErrNotAnalyzable
	}

	if cached, ok := s.Cache.Get(doc.ContentHash); ok {
		doc.Analysis = cached
		doc.Status = domain.StatusCompleted
		doc.StatusDetail = ""
		if err := s.Repo.Save(ctx, doc); err != nil {
			return nil, err
		}
		return cached, nil
	}

	if err := s.Repo.UpdateStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		return nil, err
	}

	res, err := s.analyze(ctx, doc.TextContent)
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), doc.ID, domain.StatusFailed, err.Error())
		return nil, err
	}

	doc.Analysis = res
	doc.Status = domain.StatusCompleted
	doc.StatusDetail = ""
	if err := s.Repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.Cache.Add(doc.ContentHash, res)
	return res, nil
}

func (s *Service) analyze(ctx context.Context, contractText string) (*analysis.Result, error) {
	cleaned, err := prompt.CleanContent(contractText)
	if err != nil {
		return nil, err
	}

	start := s.Clock.Now()
	raw, err := s.AI.Analyze(ctx, prompt.AnalysisPrompt(cleaned))
	if err != nil {
		return nil, err
	}
	elapsed := s.Clock.Now().Sub(start)
	s.Perf.Record(len(cleaned), elapsed)

	res, err := normalize.Reply(raw, cleaned)
	if err != nil {
		return nil, err
	}
	res.AnalyzedAt = s.Clock.Now()
	res.ModelUsed = s.Model
	res.ProcessingMS = elapsed.Milliseconds()
	return res, nil
}

type StatusResult struct {
	ID       domain.DocumentID `json:"id"`
	Status   domain.Status     `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Estimate perf.Estimate     `json:"estimate"`
}

// Status returns the analysis lifecycle state plus a duration estimate.
func (s *Service) Status(ctx context.Context, userID string, id domain.DocumentID) (StatusResult, error) {
	doc, err := s.get(ctx, userID, id)
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{
		ID:       doc.ID,
		Status:   doc.Status,
		Detail:   doc.StatusDetail,
		Estimate: s.Perf.Estimate(len(doc.TextContent)),
	}, nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Get(ctx context.Context, userID string, id domain.DocumentID) (*domain.Document, error) {
	return s.get(ctx, userID, id)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.Repo.CountByUser(ctx, userID)
}

// Delete removes the record and, best effort, the stored blob.
func (s *Service) Delete(ctx context.Context, userID string, id domain.DocumentID) error {
	doc, err := s.get(ctx, userID, id)
	if err != nil {
		return err
	}
	if doc.StorageKey != "" {
		_ = s.Blobs.Remove(ctx, doc.StorageKey)
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) get(ctx context.Context, userID string, id domain.DocumentID) (*domain.Document, error) {
	doc, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
