package mysql

import (
	"context"

	"bank-loan-service/internal/domain/apperr"
	docDomain "bank-loan-service/internal/domain/document"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository struct {
	db *gorm.DB
	// set on tx-bound repos so document-set reads are share-locked
	lockReads bool
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *docDomain.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) GetByDocumentID(ctx context.Context, documentID string) (*docDomain.Document, error) {
	var out docDomain.Document
	res := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&out)
	return &out, res.Error
}

func (r *DocumentRepository) GetByDocumentIDForUpdate(ctx context.Context, documentID string) (*docDomain.Document, error) {
	var out docDomain.Document
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_id = ?", documentID).
		First(&out)
	return &out, res.Error
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID uint64) ([]docDomain.Document, error) {
	var out []docDomain.Document
	q := r.db.WithContext(ctx)
	if r.lockReads {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	res := q.Where("user_id = ?", userID).Order("id").Find(&out)
	return out, res.Error
}

func (r *DocumentRepository) List(ctx context.Context) ([]docDomain.Document, error) {
	var out []docDomain.Document
	res := r.db.WithContext(ctx).Order("id").Find(&out)
	return out, res.Error
}

func (r *DocumentRepository) TransitionStatus(ctx context.Context, d *docDomain.Document, from, to docDomain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&docDomain.Document{}).
		Where("id = ? AND status = ?", d.ID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.InvalidState("document %s changed concurrently, expected %s", d.DocumentID, from)
	}
	d.Status = to
	return nil
}

func (r *DocumentRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&docDomain.Document{}).Where("user_id = ?", userID).Count(&n)
	return n, res.Error
}
