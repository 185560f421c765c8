package uow

import (
	"context"

	"bank-loan-service/internal/domain/document"
	"bank-loan-service/internal/domain/loan"
	"bank-loan-service/internal/domain/rate"
	"bank-loan-service/internal/domain/user"
)

// Repos are bound to the transaction opened by UnitOfWork.
type Repos struct {
	Users     user.Repository
	Documents document.Repository
	Loans     loan.Repository
	Rates     rate.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the application row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, a *loan.Application) error) error
	// convenience: lock the document row first, then pass it in
	WithinDocumentTx(ctx context.Context, documentID string, fn func(r Repos, d *document.Document) error) error
}
