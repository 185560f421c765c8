package loanmock

import (
	"context"
	"errors"

	domain "bank-loan-service/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// ErrNotImplemented is returned by lookups whose function field is unset.
var ErrNotImplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers succeed; unset readers return ErrNotImplemented.
type Repo struct {
	CreateFn                func(ctx context.Context, a *domain.Application) error
	GetByLoanIDFn           func(ctx context.Context, loanID string) (*domain.Application, error)
	GetByLoanIDForUpdateFn  func(ctx context.Context, loanID string) (*domain.Application, error)
	ListByUserFn            func(ctx context.Context, userID uint64) ([]domain.Application, error)
	ListByStatusFn          func(ctx context.Context, status domain.Status) ([]domain.Application, error)
	ListFn                  func(ctx context.Context) ([]domain.Application, error)
	TransitionFn            func(ctx context.Context, a *domain.Application, from domain.Status) error
	MarkDocumentsVerifiedFn func(ctx context.Context, userID uint64) (int64, error)
	CountByUserFn           func(ctx context.Context, userID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Application, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Application, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) ListByUser(ctx context.Context, userID uint64) ([]domain.Application, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Application, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) List(ctx context.Context) ([]domain.Application, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) Transition(ctx context.Context, a *domain.Application, from domain.Status) error {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, a, from)
	}
	return nil
}

func (m *Repo) MarkDocumentsVerified(ctx context.Context, userID uint64) (int64, error) {
	if m.MarkDocumentsVerifiedFn != nil {
		return m.MarkDocumentsVerifiedFn(ctx, userID)
	}
	return 0, nil
}

func (m *Repo) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	if m.CountByUserFn != nil {
		return m.CountByUserFn(ctx, userID)
	}
	return 0, nil
}
