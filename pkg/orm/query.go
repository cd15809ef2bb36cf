// Package orm wraps *gorm.DB reads with query timing and optional caching.
package orm

import (
	"context"
	"time"

	"github.com/shashiranjanraj/rocketcart/pkg/cache"
	"github.com/shashiranjanraj/rocketcart/pkg/metrics"
	"gorm.io/gorm"
)

type Query struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Scopes(fns ...func(*gorm.DB) *gorm.DB) *Query {
	return &Query{db: q.db.Scopes(fns...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Get(ctx context.Context, dest interface{}) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.db.WithContext(ctx).Find(dest).Error
}

// First returns gorm.ErrRecordNotFound when nothing matches.
func (q *Query) First(ctx context.Context, dest interface{}) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.db.WithContext(ctx).First(dest).Error
}

func (q *Query) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("count", time.Now())
	var n int64
	err := q.db.WithContext(ctx).Count(&n).Error
	return n, err
}

// CachedCount serves Count from the cache under key, filling it on a miss.
func (q *Query) CachedCount(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var n int64
	if cache.Get(ctx, key, &n) {
		return n, nil
	}

	n, err := q.Count(ctx)
	if err != nil {
		return 0, err
	}
	_ = cache.Set(ctx, key, n, ttl)
	return n, nil
}
