package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bank-loan-service/internal/domain/rate"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateKeyPrefix = "rate:"

// RateCache is a read-through redis cache in front of rate.Repository.
// Redis failures fall through to the repository; they never fail a lookup.
type RateCache struct {
	next rate.Repository
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

var _ rate.Repository = (*RateCache)(nil)

func NewRateCache(next rate.Repository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RateCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RateCache{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *RateCache) GetByPurpose(ctx context.Context, purpose string) (*rate.InterestRate, error) {
	key := rateKeyPrefix + purpose
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var r rate.InterestRate
		if json.Unmarshal(b, &r) == nil {
			return &r, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("rate cache read failed", zap.String("purpose", purpose), zap.Error(err))
	}

	r, err := c.next.GetByPurpose(ctx, purpose)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(r); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn("rate cache write failed", zap.String("purpose", purpose), zap.Error(err))
		}
	}
	return r, nil
}

func (c *RateCache) List(ctx context.Context) ([]rate.InterestRate, error) {
	return c.next.List(ctx)
}

// Upsert writes through and drops the cached entry.
func (c *RateCache) Upsert(ctx context.Context, r *rate.InterestRate) error {
	if err := c.next.Upsert(ctx, r); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, rateKeyPrefix+r.Purpose).Err(); err != nil {
		c.log.Warn("rate cache invalidate failed", zap.String("purpose", r.Purpose), zap.Error(err))
	}
	return nil
}
