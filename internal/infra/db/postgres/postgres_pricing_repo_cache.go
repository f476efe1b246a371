package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
	"github.com/Vahe555123/busines/internal/infra/metrics"
	red "github.com/Vahe555123/busines/internal/infra/redis"
)

var _ repository.PricingRepository = (*pricingRepoCacheDecorator)(nil)

type pricingRepoCacheDecorator struct {
	inner repository.PricingRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPricingRepoCacheDecorator(inner repository.PricingRepository, cache red.RedisClient) repository.PricingRepository {
	return &pricingRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   1 * time.Hour,
	}
}

func (d *pricingRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pricing, error) {
	key := fmt.Sprintf("pricing:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("pricing", "hit")
		var p model.Pricing
		if json.Unmarshal([]byte(val), &p) == nil {
			return &p, nil
		}
	}

	metrics.IncCacheRequest("pricing", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		bytes, _ := json.Marshal(p)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return p, nil
}

// Writes invalidate both the per-id entry and the full list.
func (d *pricingRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Pricing) error {
	key := fmt.Sprintf("pricing:%s", p.ID)
	d.cache.Del(ctx, key)
	d.cache.Del(ctx, "pricing:all")
	return d.inner.Save(ctx, tx, p)
}

func (d *pricingRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Pricing, error) {
	key := "pricing:all"
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("pricing_list", "hit")
		var list []*model.Pricing
		if json.Unmarshal([]byte(val), &list) == nil {
			return list, nil
		}
	}

	metrics.IncCacheRequest("pricing_list", "miss")
	list, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		bytes, _ := json.Marshal(list)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return list, nil
}
