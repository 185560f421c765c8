package mysql

import (
	"context"

	"bank-loan-service/internal/domain/apperr"
	loanDomain "bank-loan-service/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, a *loanDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// GetByLoanIDForUpdate takes a row lock; only meaningful inside a transaction.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListByUser(ctx context.Context, userID uint64) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, status loanDomain.Status) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	res := r.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) List(ctx context.Context) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	res := r.db.WithContext(ctx).Order("id").Find(&out)
	return out, res.Error
}

// Transition is a compare-and-set on status: the write only lands if the row
// still holds from.
func (r *LoanRepository) Transition(ctx context.Context, a *loanDomain.Application, from loanDomain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Application{}).
		Where("id = ? AND status = ?", a.ID, from).
		Updates(map[string]any{
			"status":            a.Status,
			"credit_score":      a.CreditScore,
			"status_updated_at": a.StatusUpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.InvalidState("application %s changed concurrently, expected %s", a.LoanID, from)
	}
	return nil
}

func (r *LoanRepository) MarkDocumentsVerified(ctx context.Context, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Application{}).
		Where("user_id = ? AND documents_verified = ?", userID, false).
		Update("documents_verified", true)
	return res.RowsAffected, res.Error
}

func (r *LoanRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Application{}).Where("user_id = ?", userID).Count(&n)
	return n, res.Error
}
