package credit

import (
	"context"

	"bank-loan-service/internal/domain/apperr"
	"bank-loan-service/internal/domain/rate"
	"bank-loan-service/internal/domain/user"

	"github.com/shopspring/decimal"
)

// SetRate upserts the table row for purpose. Admin only.
func (p *Policy) SetRate(ctx context.Context, caller user.Caller, purpose string, value decimal.Decimal) (*rate.InterestRate, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	key := rate.Key(purpose)
	if key == "" {
		return nil, apperr.Validation("purpose is required")
	}
	if !value.IsPositive() {
		return nil, apperr.Validation("rate must be positive")
	}
	r := &rate.InterestRate{Purpose: key, Rate: value}
	if err := p.rates.Upsert(ctx, r); err != nil {
		return nil, apperr.Storage("upsert interest rate", err)
	}
	return r, nil
}

func (p *Policy) ListRates(ctx context.Context) ([]rate.InterestRate, error) {
	out, err := p.rates.List(ctx)
	if err != nil {
		return nil, apperr.Storage("list interest rates", err)
	}
	return out, nil
}

// SeedDefaults writes FallbackRates for purposes that have no row yet.
func (p *Policy) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := p.ListRates(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		have[r.Purpose] = struct{}{}
	}
	n := 0
	for purpose, value := range FallbackRates {
		if _, ok := have[purpose]; ok {
			continue
		}
		if err := p.rates.Upsert(ctx, &rate.InterestRate{Purpose: purpose, Rate: value}); err != nil {
			return n, apperr.Storage("seed interest rate", err)
		}
		n++
	}
	return n, nil
}
