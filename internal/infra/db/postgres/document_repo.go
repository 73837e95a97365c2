package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/clausewise/clausewise/internal/domain/analysis"
	domain "github.com/clausewise/clausewise/internal/domain/documents"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentCols = `
id, user_id, filename, file_size, file_type, content_hash,
storage_key, storage_url, text_content, uploaded_at,
status, status_detail, analysis_json`

// Save inserts or updates a document record
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO contract_documents
(id, user_id, filename, file_size, file_type, content_hash,
 storage_key, storage_url, text_content, uploaded_at,
 status, status_detail, analysis_json)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  status=EXCLUDED.status,
  status_detail=EXCLUDED.status_detail,
  analysis_json=EXCLUDED.analysis_json,
  storage_key=EXCLUDED.storage_key,
  storage_url=EXCLUDED.storage_url;
`
	uploaded := d.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now()
	}
	var analysisJSON any
	if d.Analysis != nil {
		analysisJSON = marshalJSON(d.Analysis)
	}
	_, err := r.db.ExecContext(ctx, q,
		d.ID, stringOrDash(d.UserID), d.Filename, d.FileSize, d.FileType, d.ContentHash,
		d.StorageKey, d.StorageURL, d.TextContent, uploaded,
		stringOrDash(string(d.Status)), d.StatusDetail, analysisJSON,
	)
	return err
}

func (r *DocumentRepository) Get(ctx context.Context, userID string, id domain.DocumentID) (*domain.Document, error) {
	q := `SELECT ` + documentCols + ` FROM contract_documents WHERE user_id=$1 AND id=$2 LIMIT 1;`
	return scanDocument(r.db.QueryRowContext(ctx, q, userID, id))
}

func (r *DocumentRepository) GetByHash(ctx context.Context, userID, contentHash string) (*domain.Document, error) {
	q := `SELECT ` + documentCols + ` FROM contract_documents WHERE user_id=$1 AND content_hash=$2 LIMIT 1;`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, userID, contentHash))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + documentCols + ` FROM contract_documents
WHERE user_id=$1 ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Document
	for rows.Next() {
		d, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id domain.DocumentID, status domain.Status, detail string) error {
	const q = `UPDATE contract_documents SET status=$1, status_detail=$2 WHERE id=$3;`
	_, err := r.db.ExecContext(ctx, q, string(status), detail, id)
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, userID string, id domain.DocumentID) error {
	const q = `DELETE FROM contract_documents WHERE user_id=$1 AND id=$2;`
	res, err := r.db.ExecContext(ctx, q, userID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *DocumentRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM contract_documents WHERE user_id=$1;`
	var n int
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (*domain.Document, error) {
	return scanDocumentRows(row)
}

func scanDocumentRows(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var analysisJSON sql.NullString
	if err := row.Scan(
		&d.ID, &d.UserID, &d.Filename, &d.FileSize, &d.FileType, &d.ContentHash,
		&d.StorageKey, &d.StorageURL, &d.TextContent, &d.UploadedAt,
		&d.Status, &d.StatusDetail, &analysisJSON,
	); err != nil {
		return nil, err
	}
	if analysisJSON.Valid && analysisJSON.String != "" && analysisJSON.String != "{}" {
		var a analysis.Result
		if err := json.Unmarshal([]byte(analysisJSON.String), &a); err == nil {
			d.Analysis = &a
		}
	}
	return &d, nil
}
