//go:build !integration

package postgres

import (
	"context"
	"time"

	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
	red "telegram-event-scheduler/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerScaffoldRepo mocks the database repository that the decorator wraps.
type mockInnerScaffoldRepo struct {
	SaveFunc       func(ctx context.Context, tx repository.Tx, s *model.Scaffold) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.Scaffold, error)
	ListActiveFunc func(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error)
	ListAllFunc    func(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error)
}

func (m *mockInnerScaffoldRepo) Save(ctx context.Context, tx repository.Tx, s *model.Scaffold) error {
	return m.SaveFunc(ctx, tx, s)
}
func (m *mockInnerScaffoldRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Scaffold, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerScaffoldRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error) {
	return m.ListActiveFunc(ctx, tx)
}
func (m *mockInnerScaffoldRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNXFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
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
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return m.SetNXFunc(ctx, key, value, expiration)
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
