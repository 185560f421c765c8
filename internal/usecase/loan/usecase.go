package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	"bank-loan-service/internal/domain/apperr"
	"bank-loan-service/internal/domain/document"
	domain "bank-loan-service/internal/domain/loan"
	"bank-loan-service/internal/domain/uow"
	"bank-loan-service/internal/domain/user"
	"bank-loan-service/internal/infrastructure/metrics"
	"bank-loan-service/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Policy is the credit & rate policy the workflow consults.
type Policy interface {
	CreditScore(amount decimal.Decimal, termMonths int, purpose string) int
	Eligible(score int, amount decimal.Decimal) bool
	InterestRate(ctx context.Context, purpose string) (decimal.Decimal, error)
}

type Notifier interface {
	NotifyLoanStatus(ctx context.Context, userID uint64, status string)
}

// Usecase drives an application through SUBMITTED -> VERIFIED -> APPROVED | REJECTED.
type Usecase struct {
	repo   domain.Repository
	uow    uow.UnitOfWork
	policy Policy
	notify Notifier
	log    *zap.Logger
}

func NewUsecase(r domain.Repository, tx uow.UnitOfWork, p Policy, n Notifier, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, uow: tx, policy: p, notify: n, log: log}
}

// Apply creates a SUBMITTED application once the caller's whole document set
// is verified.
func (u *Usecase) Apply(ctx context.Context, caller user.Caller, in ApplyInput) (*LoanDTO, error) {
	purpose := strings.TrimSpace(in.Purpose)
	switch {
	case !in.Amount.IsPositive():
		return nil, apperr.Validation("amount must be greater than 0")
	case in.TermMonths <= 0:
		return nil, apperr.Validation("term must be greater than 0")
	case purpose == "":
		return nil, apperr.Validation("purpose is required")
	}

	rate, err := u.policy.InterestRate(ctx, purpose)
	if err != nil {
		return nil, err
	}

	var created *domain.Application
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByIDForUpdate(ctx, caller.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user")
			}
			return err
		}
		docs, err := r.Documents.ListByUser(ctx, caller.ID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return apperr.ErrNoDocuments
		}
		if !document.AllVerified(docs) {
			return apperr.ErrDocumentsUnverified
		}

		a := &domain.Application{
			LoanID:            id.NewID32(),
			UserID:            caller.ID,
			Amount:            in.Amount,
			TermMonths:        in.TermMonths,
			Purpose:           purpose,
			InterestRate:      rate,
			DocumentsVerified: true,
			CreditScore:       domain.Unscored,
			Status:            domain.StatusSubmitted,
			StatusUpdatedAt:   time.Now().UTC(),
		}
		if err := r.Loans.Create(ctx, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	metrics.LoanTransitions.WithLabelValues(string(domain.StatusSubmitted)).Inc()
	u.log.Info("loan application submitted",
		zap.String("loan_id", created.LoanID), zap.Uint64("user_id", caller.ID), zap.String("amount", created.Amount.String()))
	return toDTO(created), nil
}

// Verify scores a SUBMITTED application and moves it to VERIFIED. Re-verifying
// is rejected rather than treated as a no-op.
func (u *Usecase) Verify(ctx context.Context, caller user.Caller, loanID string) (*LoanDTO, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	var out *domain.Application
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, a *domain.Application) error {
		if a.Status != domain.StatusSubmitted {
			return apperr.InvalidState("application %s is %s, want %s", a.LoanID, a.Status, domain.StatusSubmitted)
		}
		a.CreditScore = domain.Scored(u.policy.CreditScore(a.Amount, a.TermMonths, a.Purpose))
		a.Status = domain.StatusVerified
		a.StatusUpdatedAt = time.Now().UTC()
		if err := r.Loans.Transition(ctx, a, domain.StatusSubmitted); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	metrics.LoanTransitions.WithLabelValues(string(domain.StatusVerified)).Inc()
	u.log.Info("loan application verified", zap.String("loan_id", out.LoanID), zap.Stringer("credit_score", out.CreditScore))
	return toDTO(out), nil
}

// Decide applies the eligibility rule to a VERIFIED application.
func (u *Usecase) Decide(ctx context.Context, caller user.Caller, loanID string) (*LoanDTO, error) {
	return u.decide(ctx, caller, loanID, func(a *domain.Application) (domain.Status, error) {
		score, ok := a.CreditScore.Get()
		if !ok {
			return "", apperr.InvalidState("application %s has no credit score", a.LoanID)
		}
		if u.policy.Eligible(score, a.Amount) {
			return domain.StatusApproved, nil
		}
		return domain.StatusRejected, nil
	})
}

// Approve forces APPROVED regardless of eligibility.
func (u *Usecase) Approve(ctx context.Context, caller user.Caller, loanID string) (*LoanDTO, error) {
	return u.decide(ctx, caller, loanID, func(*domain.Application) (domain.Status, error) {
		return domain.StatusApproved, nil
	})
}

// Reject forces REJECTED regardless of eligibility.
func (u *Usecase) Reject(ctx context.Context, caller user.Caller, loanID string) (*LoanDTO, error) {
	return u.decide(ctx, caller, loanID, func(*domain.Application) (domain.Status, error) {
		return domain.StatusRejected, nil
	})
}

func (u *Usecase) decide(ctx context.Context, caller user.Caller, loanID string, outcome func(*domain.Application) (domain.Status, error)) (*LoanDTO, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	var out *domain.Application
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, a *domain.Application) error {
		if a.Status != domain.StatusVerified {
			return apperr.InvalidState("application %s is %s, want %s", a.LoanID, a.Status, domain.StatusVerified)
		}
		to, err := outcome(a)
		if err != nil {
			return err
		}
		a.Status = to
		a.StatusUpdatedAt = time.Now().UTC()
		if err := r.Loans.Transition(ctx, a, domain.StatusVerified); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	metrics.LoanTransitions.WithLabelValues(string(out.Status)).Inc()
	u.log.Info("loan application decided", zap.String("loan_id", out.LoanID), zap.String("status", string(out.Status)))
	if u.notify != nil {
		u.notify.NotifyLoanStatus(ctx, out.UserID, strings.ToLower(string(out.Status)))
	}
	return toDTO(out), nil
}

func (u *Usecase) Get(ctx context.Context, caller user.Caller, loanID string) (*LoanDTO, error) {
	a, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, translate(err)
	}
	if !caller.IsAdmin() && a.UserID != caller.ID {
		// hide other users' applications
		return nil, apperr.NotFound("loan application")
	}
	return toDTO(a), nil
}

func (u *Usecase) ListMine(ctx context.Context, caller user.Caller) ([]LoanDTO, error) {
	return u.ListByUser(ctx, caller, caller.ID)
}

func (u *Usecase) ListByUser(ctx context.Context, caller user.Caller, userID uint64) ([]LoanDTO, error) {
	if !caller.IsAdmin() && caller.ID != userID {
		return nil, apperr.ErrForbidden
	}
	out, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("list loans", err)
	}
	return toDTOs(out), nil
}

func (u *Usecase) ListAll(ctx context.Context, caller user.Caller) ([]LoanDTO, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	out, err := u.repo.List(ctx)
	if err != nil {
		return nil, apperr.Storage("list loans", err)
	}
	return toDTOs(out), nil
}

func (u *Usecase) ListByStatus(ctx context.Context, caller user.Caller, status domain.Status) ([]LoanDTO, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	st, ok := domain.ParseStatus(string(status))
	if !ok {
		return nil, apperr.Validation("unknown status " + string(status))
	}
	out, err := u.repo.ListByStatus(ctx, st)
	if err != nil {
		return nil, apperr.Storage("list loans", err)
	}
	return toDTOs(out), nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("loan application")
	case apperr.Known(err):
		return err
	default:
		return apperr.Storage("loan tx", err)
	}
}
