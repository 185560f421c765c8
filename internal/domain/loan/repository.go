package loan

import "context"

type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByLoanID(ctx context.Context, loanID string) (*Application, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Application, error)
	ListByUser(ctx context.Context, userID uint64) ([]Application, error)
	ListByStatus(ctx context.Context, status Status) ([]Application, error)
	List(ctx context.Context) ([]Application, error)
	// Transition persists a's status/score only if the stored status is still
	// from; otherwise it reports apperr.ErrInvalidState.
	Transition(ctx context.Context, a *Application, from Status) error
	// MarkDocumentsVerified flags every application of the user that is not
	// flagged yet and returns the number of rows changed.
	MarkDocumentsVerified(ctx context.Context, userID uint64) (int64, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
}
