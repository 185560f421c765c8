package documentmock

import (
	"context"
	"errors"
	"sync"

	domain "bank-loan-service/internal/domain/document"
)

var (
	_ domain.Repository = (*Repo)(nil)
	_ domain.BlobStore  = (*Blobs)(nil)
)

var ErrNotImplemented = errors.New("documentmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                   func(ctx context.Context, d *domain.Document) error
	GetByDocumentIDFn          func(ctx context.Context, documentID string) (*domain.Document, error)
	GetByDocumentIDForUpdateFn func(ctx context.Context, documentID string) (*domain.Document, error)
	ListByUserFn               func(ctx context.Context, userID uint64) ([]domain.Document, error)
	ListFn                     func(ctx context.Context) ([]domain.Document, error)
	TransitionStatusFn         func(ctx context.Context, d *domain.Document, from, to domain.Status) error
	CountByUserFn              func(ctx context.Context, userID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Document) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByDocumentID(ctx context.Context, documentID string) (*domain.Document, error) {
	if m.GetByDocumentIDFn != nil {
		return m.GetByDocumentIDFn(ctx, documentID)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) GetByDocumentIDForUpdate(ctx context.Context, documentID string) (*domain.Document, error) {
	if m.GetByDocumentIDForUpdateFn != nil {
		return m.GetByDocumentIDForUpdateFn(ctx, documentID)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) ListByUser(ctx context.Context, userID uint64) ([]domain.Document, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) List(ctx context.Context) ([]domain.Document, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, ErrNotImplemented
}

// TransitionStatus defaults to applying the change in memory.
func (m *Repo) TransitionStatus(ctx context.Context, d *domain.Document, from, to domain.Status) error {
	if m.TransitionStatusFn != nil {
		return m.TransitionStatusFn(ctx, d, from, to)
	}
	d.Status = to
	return nil
}

func (m *Repo) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	if m.CountByUserFn != nil {
		return m.CountByUserFn(ctx, userID)
	}
	return 0, nil
}

// Blobs is an in-memory BlobStore; PutFn/DeleteFn override the default.
type Blobs struct {
	PutFn    func(ctx context.Context, key string, data []byte) (string, error)
	DeleteFn func(ctx context.Context, key string) error

	mu      sync.Mutex
	Objects map[string][]byte
}

func (b *Blobs) Put(ctx context.Context, key string, data []byte) (string, error) {
	if b.PutFn != nil {
		return b.PutFn(ctx, key, data)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Objects == nil {
		b.Objects = map[string][]byte{}
	}
	b.Objects[key] = append([]byte(nil), data...)
	return key, nil
}

func (b *Blobs) Delete(ctx context.Context, key string) error {
	if b.DeleteFn != nil {
		return b.DeleteFn(ctx, key)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Objects, key)
	return nil
}

func (b *Blobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Objects)
}
