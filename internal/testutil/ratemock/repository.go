package ratemock

import (
	"context"
	"sync"

	domain "bank-loan-service/internal/domain/rate"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo keeps rates in a map unless a function field overrides the call.
type Repo struct {
	GetByPurposeFn func(ctx context.Context, purpose string) (*domain.InterestRate, error)
	ListFn         func(ctx context.Context) ([]domain.InterestRate, error)
	UpsertFn       func(ctx context.Context, r *domain.InterestRate) error

	mu    sync.Mutex
	Rates map[string]domain.InterestRate
}

func (m *Repo) GetByPurpose(ctx context.Context, purpose string) (*domain.InterestRate, error) {
	if m.GetByPurposeFn != nil {
		return m.GetByPurposeFn(ctx, purpose)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Rates[purpose]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *Repo) List(ctx context.Context) ([]domain.InterestRate, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.InterestRate, 0, len(m.Rates))
	for _, r := range m.Rates {
		out = append(out, r)
	}
	return out, nil
}

func (m *Repo) Upsert(ctx context.Context, r *domain.InterestRate) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Rates == nil {
		m.Rates = map[string]domain.InterestRate{}
	}
	m.Rates[r.Purpose] = *r
	return nil
}
