// Package orm is a small chainable layer over gorm for list endpoints:
// optional filters, ordering, offset/limit windows and cached reads.
//
//	var leads []models.Lead
//	err := orm.New(db).WithContext(ctx).
//	    Model(&models.Lead{}).
//	    WhereIf(stage != "", "stage = ?", stage).
//	    Order("id").
//	    Window(skip, limit).
//	    Get(&leads)
package orm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/pkg/cache"
	"github.com/nutrieve/nutrieve/pkg/database"
)

type Query struct {
	db *gorm.DB
}

// New starts a query on db.
func New(db *gorm.DB) *Query {
	return &Query{db: db}
}

// DB starts a query on the process-wide connection.
func DB() *Query {
	return New(database.DB)
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v any) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query any, args ...any) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

// WhereIf adds the condition only when cond is true.
func (q *Query) WhereIf(cond bool, query any, args ...any) *Query {
	if !cond {
		return q
	}
	return q.Where(query, args...)
}

func (q *Query) Order(value any) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Preload(query string, args ...any) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

// Window applies OFFSET skip LIMIT limit. A non-positive limit means no limit.
func (q *Query) Window(skip, limit int) *Query {
	db := q.db
	if skip > 0 {
		db = db.Offset(skip)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return &Query{db: db}
}

func (q *Query) Get(dest any) error {
	return q.db.Find(dest).Error
}

// First returns gorm.ErrRecordNotFound when nothing matches.
func (q *Query) First(dest any) error {
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

// Cache serves dest from the cache under key, loading it with Get on a miss.
func (q *Query) Cache(ctx context.Context, key string, ttl time.Duration, dest any) error {
	if cache.Get(ctx, key, dest) {
		return nil
	}
	if err := q.Get(dest); err != nil {
		return err
	}
	return cache.Set(ctx, key, dest, ttl)
}

// Gorm exposes the underlying builder for anything not wrapped here.
func (q *Query) Gorm() *gorm.DB { return q.db }
