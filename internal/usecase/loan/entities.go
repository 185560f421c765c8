package loan

import (
	"time"

	domain "bank-loan-service/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type ApplyInput struct {
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term"`
	Purpose    string          `json:"purpose"`
}

type LoanDTO struct {
	LoanID            string          `json:"loan_id"`
	UserID            uint64          `json:"user_id"`
	Amount            decimal.Decimal `json:"amount"`
	TermMonths        int             `json:"term"`
	Purpose           string          `json:"purpose"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	DocumentsVerified bool            `json:"documents_verified"`
	CreditScore       domain.Score    `json:"credit_score"`
	Status            string          `json:"status"`
	StatusUpdatedAt   time.Time       `json:"status_updated_at"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toDTO(a *domain.Application) *LoanDTO {
	return &LoanDTO{
		LoanID:            a.LoanID,
		UserID:            a.UserID,
		Amount:            a.Amount,
		TermMonths:        a.TermMonths,
		Purpose:           a.Purpose,
		InterestRate:      a.InterestRate,
		DocumentsVerified: a.DocumentsVerified,
		CreditScore:       a.CreditScore,
		Status:            string(a.Status),
		StatusUpdatedAt:   a.StatusUpdatedAt,
		CreatedAt:         a.CreatedAt,
	}
}

func toDTOs(in []domain.Application) []LoanDTO {
	out := make([]LoanDTO, 0, len(in))
	for i := range in {
		out = append(out, *toDTO(&in[i]))
	}
	return out
}
