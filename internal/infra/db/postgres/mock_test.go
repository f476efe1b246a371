//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
	red "github.com/Vahe555123/busines/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerPricingRepo mocks the database repository that the decorator wraps.
type mockInnerPricingRepo struct {
	SaveFunc     func(ctx context.Context, tx repository.Tx, p *model.Pricing) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Pricing, error)
	ListAllFunc  func(ctx context.Context, tx repository.Tx) ([]*model.Pricing, error)
}

func (m *mockInnerPricingRepo) Save(ctx context.Context, tx repository.Tx, p *model.Pricing) error {
	return m.SaveFunc(ctx, tx, p)
}
func (m *mockInnerPricingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pricing, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerPricingRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Pricing, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
