package documents

import (
	"time"

	"github.com/clausewise/clausewise/internal/domain/analysis"
)

// DocumentID tipe untuk Document
type DocumentID string

// Status enum for the analysis lifecycle
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Aggregate Root: Document (an uploaded contract and its analysis state)
type Document struct {
	ID          DocumentID `json:"id"`
	UserID      string     `json:"user_id"`
	Filename    string     `json:"filename"`
	FileSize    int64      `json:"file_size"`
	FileType    string     `json:"file_type"`
	ContentHash string     `json:"content_hash"`
	StorageKey  string     `json:"storage_key,omitempty"`
	StorageURL  string     `json:"storage_url,omitempty"`
	TextContent string     `json:"-"`
	UploadedAt  time.Time  `json:"uploaded_at"`

	Status       Status           `json:"analysis_status"`
	StatusDetail string           `json:"status_detail,omitempty"`
	Analysis     *analysis.Result `json:"analysis,omitempty"`
}

// SupportsAnalysis reports whether enough text survived extraction for the
// AI pipeline to work with. The same floor is enforced again by the cleaner.
func (d *Document) SupportsAnalysis() bool {
	return len(d.TextContent) >= 100
}

// SupportsChat mirrors SupportsAnalysis; chat needs readable text too.
func (d *Document) SupportsChat() bool {
	return d.SupportsAnalysis()
}
