package mysql

import (
	"context"

	rateDomain "bank-loan-service/internal/domain/rate"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateRepository struct{ db *gorm.DB }

func NewRateRepository(db *gorm.DB) *RateRepository { return &RateRepository{db: db} }

func (r *RateRepository) GetByPurpose(ctx context.Context, purpose string) (*rateDomain.InterestRate, error) {
	var out rateDomain.InterestRate
	res := r.db.WithContext(ctx).Where("purpose = ?", rateDomain.Key(purpose)).First(&out)
	return &out, res.Error
}

func (r *RateRepository) List(ctx context.Context) ([]rateDomain.InterestRate, error) {
	var out []rateDomain.InterestRate
	res := r.db.WithContext(ctx).Order("purpose").Find(&out)
	return out, res.Error
}

func (r *RateRepository) Upsert(ctx context.Context, in *rateDomain.InterestRate) error {
	in.Purpose = rateDomain.Key(in.Purpose)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "purpose"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).
		Create(in).Error
}
