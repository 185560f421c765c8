package document

import "context"

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByDocumentID(ctx context.Context, documentID string) (*Document, error)
	GetByDocumentIDForUpdate(ctx context.Context, documentID string) (*Document, error)
	// ListByUser reads the user's whole document set; inside a transaction the
	// rows are share-locked so the result is a consistent snapshot.
	ListByUser(ctx context.Context, userID uint64) ([]Document, error)
	List(ctx context.Context) ([]Document, error)
	// TransitionStatus applies to only if the stored status still equals from.
	TransitionStatus(ctx context.Context, d *Document, from, to Status) error
	CountByUser(ctx context.Context, userID uint64) (int64, error)
}

// BlobStore holds the raw uploaded bytes.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}
