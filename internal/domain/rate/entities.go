package rate

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InterestRate struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	Purpose   string          `gorm:"size:64;uniqueIndex:ux_interest_rates_purpose" json:"purpose"`
	Rate      decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"rate"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InterestRate) TableName() string { return "interest_rates" }

// Key normalizes a loan purpose into the table's lookup key.
func Key(purpose string) string { return strings.ToLower(strings.TrimSpace(purpose)) }
