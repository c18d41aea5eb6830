package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
	"telegram-event-scheduler/internal/infra/metrics"
	red "telegram-event-scheduler/internal/infra/redis"
)

var _ repository.ScaffoldRepository = (*scaffoldRepoCacheDecorator)(nil)

// scaffoldRepoCacheDecorator caches weekly templates in Redis. Templates
// change rarely but get read on every /weeklies and every materializer run.
type scaffoldRepoCacheDecorator struct {
	inner repository.ScaffoldRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewScaffoldRepoCacheDecorator(inner repository.ScaffoldRepository, cache red.RedisClient) repository.ScaffoldRepository {
	return &scaffoldRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   1 * time.Hour,
	}
}

func (d *scaffoldRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Scaffold, error) {
	// Inside a transaction the caller wants current rows, not cached ones.
	if tx != repository.NoTX {
		return d.inner.FindByID(ctx, tx, id)
	}

	key := fmt.Sprintf("scaffold:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("scaffold", "hit")
		var s model.Scaffold
		if json.Unmarshal([]byte(val), &s) == nil {
			return &s, nil
		}
	} else if err != redis.Nil {
		metrics.IncCacheRequest("scaffold", "error")
	}

	metrics.IncCacheRequest("scaffold", "miss")
	s, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(s); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return s, nil
}

func (d *scaffoldRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, s *model.Scaffold) error {
	// Writes invalidate both the single entry and the cached lists.
	_ = d.cache.Del(ctx, fmt.Sprintf("scaffold:%s", s.ID), "scaffolds:active", "scaffolds:all")
	return d.inner.Save(ctx, tx, s)
}

func (d *scaffoldRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error) {
	return d.cachedList(ctx, tx, "scaffolds:active", d.inner.ListActive)
}

func (d *scaffoldRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error) {
	return d.cachedList(ctx, tx, "scaffolds:all", d.inner.ListAll)
}

func (d *scaffoldRepoCacheDecorator) cachedList(ctx context.Context, tx repository.Tx, key string, load func(context.Context, repository.Tx) ([]*model.Scaffold, error)) ([]*model.Scaffold, error) {
	if tx != repository.NoTX {
		return load(ctx, tx)
	}

	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("scaffold_list", "hit")
		var list []*model.Scaffold
		if json.Unmarshal([]byte(val), &list) == nil {
			return list, nil
		}
	} else if err != redis.Nil {
		metrics.IncCacheRequest("scaffold_list", "error")
	}

	metrics.IncCacheRequest("scaffold_list", "miss")
	list, err := load(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		if bytes, err := json.Marshal(list); err == nil {
			_ = d.cache.Set(ctx, key, bytes, d.ttl)
		}
	}
	return list, nil
}
