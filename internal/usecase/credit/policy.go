package credit

import (
	"context"
	"errors"
	"strings"

	"bank-loan-service/internal/domain/apperr"
	"bank-loan-service/internal/domain/rate"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MinScore  = 300
	MaxScore  = 850
	baseScore = 500

	// Eligibility requires a score strictly above this.
	EligibleScoreThreshold = 600
)

var (
	largeAmount     = decimal.NewFromInt(10000)
	mediumAmount    = decimal.NewFromInt(5000)
	eligibleCeiling = decimal.NewFromInt(50000)

	DefaultRate = decimal.RequireFromString("10.0")
)

// FallbackRates apply when the interest_rates table has no row for a purpose.
var FallbackRates = map[string]decimal.Decimal{
	"home purchase":      decimal.RequireFromString("8.5"),
	"car purchase":       decimal.RequireFromString("9.5"),
	"education":          decimal.RequireFromString("7.5"),
	"business":           decimal.RequireFromString("10.5"),
	"personal":           decimal.RequireFromString("12.0"),
	"health":             decimal.RequireFromString("8.0"),
	"travel":             decimal.RequireFromString("11.0"),
	"wedding":            decimal.RequireFromString("9.0"),
	"home renovation":    decimal.RequireFromString("8.75"),
	"debt consolidation": decimal.RequireFromString("11.5"),
}

// CalculateCreditScore is deterministic and always lands in [MinScore, MaxScore].
func CalculateCreditScore(amount decimal.Decimal, termMonths int, purpose string) int {
	score := baseScore

	switch {
	case amount.GreaterThan(largeAmount):
		score -= 50
	case amount.GreaterThan(mediumAmount):
		score -= 25
	}

	switch {
	case termMonths > 24:
		score += 20
	case termMonths > 12:
		score += 10
	}

	switch {
	case strings.EqualFold(purpose, "business"):
		score -= 30
	case strings.EqualFold(purpose, "personal"):
		score += 10
	}

	return clamp(score, MinScore, MaxScore)
}

func IsEligible(score int, amount decimal.Decimal) bool {
	return score > EligibleScoreThreshold && amount.LessThan(eligibleCeiling)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Policy resolves interest rates against the configurable table.
type Policy struct{ rates rate.Repository }

func NewPolicy(rates rate.Repository) *Policy { return &Policy{rates: rates} }

func (p *Policy) CreditScore(amount decimal.Decimal, termMonths int, purpose string) int {
	return CalculateCreditScore(amount, termMonths, purpose)
}

func (p *Policy) Eligible(score int, amount decimal.Decimal) bool {
	return IsEligible(score, amount)
}

// InterestRate looks the purpose up case-insensitively, then falls back to
// FallbackRates, then DefaultRate.
func (p *Policy) InterestRate(ctx context.Context, purpose string) (decimal.Decimal, error) {
	key := rate.Key(purpose)
	if p.rates != nil {
		r, err := p.rates.GetByPurpose(ctx, key)
		switch {
		case err == nil:
			return r.Rate, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return decimal.Zero, apperr.Storage("lookup interest rate", err)
		}
	}
	return FallbackRate(key), nil
}

func FallbackRate(purpose string) decimal.Decimal {
	if r, ok := FallbackRates[rate.Key(purpose)]; ok {
		return r
	}
	return DefaultRate
}
