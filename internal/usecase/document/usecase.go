package document

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"bank-loan-service/internal/domain/apperr"
	domain "bank-loan-service/internal/domain/document"
	"bank-loan-service/internal/domain/uow"
	"bank-loan-service/internal/domain/user"
	"bank-loan-service/internal/infrastructure/metrics"
	"bank-loan-service/pkg/id"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultBlobTimeout = 10 * time.Second

type Usecase struct {
	docs        domain.Repository
	blobs       domain.BlobStore
	uow         uow.UnitOfWork
	log         *zap.Logger
	blobTimeout time.Duration
}

func NewUsecase(docs domain.Repository, blobs domain.BlobStore, tx uow.UnitOfWork, log *zap.Logger, blobTimeout time.Duration) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	if blobTimeout <= 0 {
		blobTimeout = defaultBlobTimeout
	}
	return &Usecase{docs: docs, blobs: blobs, uow: tx, log: log, blobTimeout: blobTimeout}
}

// Upload stores the bytes first; the metadata row is only written once the
// blob is safely persisted, and only while the owner's row is locked so a
// concurrent account deletion cannot leave the document orphaned.
func (u *Usecase) Upload(ctx context.Context, caller user.Caller, in UploadInput) (*domain.Document, error) {
	docType := strings.TrimSpace(in.DocumentType)
	if docType == "" {
		return nil, apperr.Validation("document type is required")
	}
	if len(in.Data) == 0 {
		return nil, apperr.Validation("file is empty")
	}
	name := sanitizeName(in.FileName)
	key := uuid.NewString() + "_" + name

	bctx, cancel := context.WithTimeout(ctx, u.blobTimeout)
	defer cancel()
	if _, err := u.blobs.Put(bctx, key, in.Data); err != nil {
		return nil, apperr.Storage("write blob", err)
	}

	d := &domain.Document{
		DocumentID:   id.NewID32(),
		UserID:       caller.ID,
		DocumentType: docType,
		FileName:     name,
		StorageKey:   key,
		ContentType:  in.ContentType,
		FileSize:     int64(len(in.Data)),
		Status:       domain.StatusUploaded,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByIDForUpdate(ctx, caller.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user")
			}
			return apperr.Storage("lock user", err)
		}
		if err := r.Documents.Create(ctx, d); err != nil {
			return apperr.Storage("create document", err)
		}
		return nil
	})
	if err != nil {
		if derr := u.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			u.log.Warn("orphan blob left after metadata failure", zap.String("key", key), zap.Error(derr))
		}
		if apperr.Known(err) {
			return nil, err
		}
		return nil, apperr.Storage("create document", err)
	}
	u.log.Info("document uploaded",
		zap.Uint64("user_id", caller.ID), zap.String("document_id", d.DocumentID), zap.String("type", docType))
	return d, nil
}

func (u *Usecase) ListMine(ctx context.Context, caller user.Caller) ([]domain.Document, error) {
	return u.listByUser(ctx, caller.ID)
}

// ListByUser is the admin view of another user's documents.
func (u *Usecase) ListByUser(ctx context.Context, caller user.Caller, userID uint64) ([]domain.Document, error) {
	if !caller.IsAdmin() && caller.ID != userID {
		return nil, apperr.ErrForbidden
	}
	return u.listByUser(ctx, userID)
}

func (u *Usecase) listByUser(ctx context.Context, userID uint64) ([]domain.Document, error) {
	out, err := u.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("list documents", err)
	}
	return out, nil
}

func (u *Usecase) ListAll(ctx context.Context, caller user.Caller) ([]domain.Document, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	out, err := u.docs.List(ctx)
	if err != nil {
		return nil, apperr.Storage("list documents", err)
	}
	return out, nil
}

// Verify marks the document VERIFIED and, if the owner's whole document set is
// now verified, flags every application of that owner in the same transaction.
// Verifying an already VERIFIED document only re-runs that check.
func (u *Usecase) Verify(ctx context.Context, caller user.Caller, documentID string) (*domain.Document, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	var out *domain.Document
	var flagged int64
	var changed bool
	err := u.uow.WithinDocumentTx(ctx, documentID, func(r uow.Repos, d *domain.Document) error {
		switch d.Status {
		case domain.StatusRejected:
			return apperr.InvalidState("document %s is rejected", d.DocumentID)
		case domain.StatusUploaded:
			if err := r.Documents.TransitionStatus(ctx, d, domain.StatusUploaded, domain.StatusVerified); err != nil {
				return err
			}
			changed = true
		}

		docs, err := r.Documents.ListByUser(ctx, d.UserID)
		if err != nil {
			return err
		}
		if domain.AllVerified(docs) {
			if flagged, err = r.Loans.MarkDocumentsVerified(ctx, d.UserID); err != nil {
				return err
			}
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	if changed {
		metrics.DocumentReviews.WithLabelValues(string(domain.StatusVerified)).Inc()
	}
	u.log.Info("document verified",
		zap.String("document_id", out.DocumentID), zap.Uint64("user_id", out.UserID), zap.Int64("applications_flagged", flagged))
	return out, nil
}

// Reject is terminal for the document; the owner has to upload a replacement.
func (u *Usecase) Reject(ctx context.Context, caller user.Caller, documentID string) (*domain.Document, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	var out *domain.Document
	var changed bool
	err := u.uow.WithinDocumentTx(ctx, documentID, func(r uow.Repos, d *domain.Document) error {
		switch d.Status {
		case domain.StatusVerified:
			return apperr.InvalidState("document %s is already verified", d.DocumentID)
		case domain.StatusUploaded:
			if err := r.Documents.TransitionStatus(ctx, d, domain.StatusUploaded, domain.StatusRejected); err != nil {
				return err
			}
			changed = true
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	if changed {
		metrics.DocumentReviews.WithLabelValues(string(domain.StatusRejected)).Inc()
	}
	u.log.Info("document rejected", zap.String("document_id", out.DocumentID), zap.Uint64("user_id", out.UserID))
	return out, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("document")
	case apperr.Known(err):
		return err
	default:
		return apperr.Storage("document tx", err)
	}
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
