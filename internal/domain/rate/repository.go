package rate

import "context"

type Repository interface {
	GetByPurpose(ctx context.Context, purpose string) (*InterestRate, error)
	List(ctx context.Context) ([]InterestRate, error)
	// Upsert inserts or replaces the rate keyed by purpose.
	Upsert(ctx context.Context, r *InterestRate) error
}
