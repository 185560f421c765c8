package loan

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusVerified  Status = "VERIFIED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusSubmitted, StatusVerified, StatusApproved, StatusRejected:
		return st, true
	}
	return "", false
}

func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

type Application struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID            string          `gorm:"size:32;uniqueIndex:ux_loan_applications_loan_id" json:"loan_id"`
	UserID            uint64          `gorm:"column:user_id;not null;index:idx_loan_applications_user" json:"user_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	TermMonths        int             `gorm:"column:term_months;not null" json:"term_months"`
	Purpose           string          `gorm:"size:64;not null" json:"purpose"`
	InterestRate      decimal.Decimal `gorm:"type:decimal(6,3)" json:"interest_rate"`
	DocumentsVerified bool            `gorm:"column:documents_verified;not null;default:false" json:"documents_verified"`
	CreditScore       Score           `gorm:"column:credit_score;type:int" json:"credit_score"`
	Status            Status          `gorm:"size:16;not null;default:'SUBMITTED';index:idx_loan_applications_status" json:"status"`
	StatusUpdatedAt   time.Time       `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "loan_applications" }
