package documents

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, d *Document) error
	Get(ctx context.Context, userID string, id DocumentID) (*Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Document, error)
	GetByHash(ctx context.Context, userID, contentHash string) (*Document, error)
	UpdateStatus(ctx context.Context, id DocumentID, status Status, detail string) error
	Delete(ctx context.Context, userID string, id DocumentID) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

// BlobStore port (interface untuk penyimpanan file asli)
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}
