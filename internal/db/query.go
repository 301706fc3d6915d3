package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter is a set of column equality conditions joined with AND.
type Filter map[string]interface{}

// Option shapes a read query.
type Option func(*gorm.DB) *gorm.DB

func OrderBy(column string, desc bool) Option {
	return func(q *gorm.DB) *gorm.DB {
		return q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
}

func Limit(n int) Option {
	return func(q *gorm.DB) *gorm.DB { return q.Limit(n) }
}

// Preload eagerly loads a relation, e.g. "Route" or "Attachments".
func Preload(relation string, args ...interface{}) Option {
	return func(q *gorm.DB) *gorm.DB { return q.Preload(relation, args...) }
}

func Select(columns ...string) Option {
	return func(q *gorm.DB) *gorm.DB { return q.Select(columns) }
}

func (s *Service) query(ctx context.Context, model interface{}, f Filter, opts []Option) *gorm.DB {
	q := s.gdb.WithContext(ctx)
	if model != nil {
		q = q.Model(model)
	}
	if len(f) > 0 {
		q = q.Where(map[string]interface{}(f))
	}
	for _, opt := range opts {
		q = opt(q)
	}
	return q
}

// Find loads every row matching f into dest, a pointer to a slice.
func (s *Service) Find(ctx context.Context, dest interface{}, f Filter, opts ...Option) error {
	return errors.Wrap(s.query(ctx, nil, f, opts).Find(dest).Error, "find failed")
}

// First loads one row matching f into dest. It returns ErrNotFound when
// nothing matches.
func (s *Service) First(ctx context.Context, dest interface{}, f Filter, opts ...Option) error {
	err := s.query(ctx, nil, f, opts).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, "lookup failed")
}

// Insert creates rows, a pointer to a struct or a slice of structs. Slices
// are written in one statement.
func (s *Service) Insert(ctx context.Context, rows interface{}) error {
	return errors.Wrap(s.gdb.WithContext(ctx).Create(rows).Error, "insert failed")
}

// Update sets fields on every row of model's table matching f and reports
// how many rows changed. An empty filter is refused.
func (s *Service) Update(ctx context.Context, model interface{}, f Filter, fields map[string]interface{}) (int64, error) {
	if len(f) == 0 {
		return 0, errors.New("update requires a filter")
	}
	res := s.query(ctx, model, f, nil).Updates(fields)
	return res.RowsAffected, errors.Wrap(res.Error, "update failed")
}

// Delete removes rows of model's table matching f and reports how many went.
// Callers use a zero count to report "not found". An empty filter is refused.
func (s *Service) Delete(ctx context.Context, model interface{}, f Filter) (int64, error) {
	if len(f) == 0 {
		return 0, errors.New("delete requires a filter")
	}
	res := s.query(ctx, nil, f, nil).Delete(model)
	return res.RowsAffected, errors.Wrap(res.Error, "delete failed")
}

func (s *Service) Count(ctx context.Context, model interface{}, f Filter) (int64, error) {
	var n int64
	err := s.query(ctx, model, f, nil).Count(&n).Error
	return n, errors.Wrap(err, "count failed")
}
