package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/opsdesk/internal/infra/rowmeta"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

const pgUniqueViolation = "23505"

type GormCollection[T any] struct {
	db      *gorm.DB
	meta    *rowmeta.Meta[T]
	timeout time.Duration
	log     *zap.Logger
}

func NewGormCollection[T any](db *gorm.DB, timeout time.Duration, log *zap.Logger) *GormCollection[T] {
	meta := rowmeta.MustFor[T]()
	return &GormCollection[T]{
		db:      db,
		meta:    meta,
		timeout: timeout,
		log:     log.With(zap.String("table", meta.Table())),
	}
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *GormCollection[T]) Insert(ctx context.Context, row *T) (string, error) {
	ctx, cancel := r.scope(ctx)
	defer cancel()

	if r.meta.ID(row) == "" {
		if err := r.meta.SetID(row, uuid.NewString()); err != nil {
			return "", err
		}
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", r.translate(ctx, "insert", err)
	}
	return r.meta.ID(row), nil
}

func (r *GormCollection[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	if !validID(id) {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, r.meta.Table(), id)
	}
	for col := range patch {
		if !r.meta.HasColumn(col) || col == r.meta.PrimaryKey() {
			return fmt.Errorf("%s: column %q cannot be updated", r.meta.Table(), col)
		}
	}

	ctx, cancel := r.scope(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where(r.pkEq(id)).
		Updates(patch)
	if res.Error != nil {
		return r.translate(ctx, "update", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, r.meta.Table(), id)
	}
	return nil
}

func (r *GormCollection[T]) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, r.meta.Table(), id)
	}

	ctx, cancel := r.scope(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Where(r.pkEq(id)).
		Delete(new(T))
	if res.Error != nil {
		return r.translate(ctx, "delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, r.meta.Table(), id)
	}
	return nil
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *GormCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %s %s", store.ErrNotFound, r.meta.Table(), id)
	}

	ctx, cancel := r.scope(ctx)
	defer cancel()

	var row T
	if err := r.db.WithContext(ctx).
		Where(r.pkEq(id)).
		Take(&row).Error; err != nil {
		return nil, r.translate(ctx, "get", err)
	}
	return &row, nil
}

func (r *GormCollection[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	ctx, cancel := r.scope(ctx)
	defer cancel()

	tx, err := r.filtered(r.db.WithContext(ctx).Model(new(T)), q.Filters)
	if err != nil {
		return nil, err
	}
	for _, o := range q.Order {
		if !r.meta.HasColumn(o.Field) {
			return nil, fmt.Errorf("%s: unknown order column %q", r.meta.Table(), o.Field)
		}
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: o.Field},
			Desc:   o.Desc,
		})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	rows := make([]T, 0)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.translate(ctx, "query", err)
	}
	return rows, nil
}

func (r *GormCollection[T]) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	ctx, cancel := r.scope(ctx)
	defer cancel()

	tx, err := r.filtered(r.db.WithContext(ctx).Model(new(T)), filters)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, r.translate(ctx, "count", err)
	}
	return n, nil
}

const groupCountColumn = "group_count"

func (r *GormCollection[T]) GroupCount(ctx context.Context, fields []string, filters ...store.Filter) ([]store.Group, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: group count needs a column", r.meta.Table())
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		if !r.meta.HasColumn(f) {
			return nil, fmt.Errorf("%s: unknown group column %q", r.meta.Table(), f)
		}
		quoted[i] = r.db.Statement.Quote(f)
	}

	ctx, cancel := r.scope(ctx)
	defer cancel()

	tx, err := r.filtered(r.db.WithContext(ctx).Model(new(T)), filters)
	if err != nil {
		return nil, err
	}
	tx = tx.Select(strings.Join(quoted, ", ") + ", COUNT(*) AS " + groupCountColumn)
	for _, q := range quoted {
		tx = tx.Group(q)
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.translate(ctx, "group count", err)
	}

	out := make([]store.Group, 0, len(rows))
	for _, row := range rows {
		g := store.Group{Values: make([]any, len(fields)), Count: toInt64(row[groupCountColumn])}
		for i, f := range fields {
			g.Values[i] = row[f]
		}
		out = append(out, g)
	}
	return out, nil
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

// scope bounds every call: the caller's deadline wins, otherwise the
// configured store timeout applies.
func (r *GormCollection[T]) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *GormCollection[T]) pkEq(id string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: r.meta.PrimaryKey()}, Value: id}
}

func (r *GormCollection[T]) filtered(tx *gorm.DB, filters []store.Filter) (*gorm.DB, error) {
	for _, f := range filters {
		if !r.meta.HasColumn(f.Field) {
			return nil, fmt.Errorf("%s: unknown filter column %q", r.meta.Table(), f.Field)
		}
		col := clause.Column{Name: f.Field}

		var expr clause.Expression
		switch f.Op {
		case store.OpEq:
			expr = clause.Eq{Column: col, Value: f.Value}
		case store.OpNeq:
			expr = clause.Neq{Column: col, Value: f.Value}
		case store.OpGte:
			expr = clause.Gte{Column: col, Value: f.Value}
		case store.OpLte:
			expr = clause.Lte{Column: col, Value: f.Value}
		case store.OpIn:
			expr = clause.IN{Column: col, Values: toValues(f.Value)}
		default:
			return nil, fmt.Errorf("%s: unsupported operator %q", r.meta.Table(), f.Op)
		}
		tx = tx.Where(expr)
	}
	return tx, nil
}

func (r *GormCollection[T]) translate(ctx context.Context, op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", store.ErrNotFound, r.meta.Table())
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return fmt.Errorf("%w: %s: %w", store.ErrConflict, r.meta.Table(), err)
	}

	r.log.Warn("store call failed",
		zap.String("op", op),
		zap.Bool("deadline_exceeded", errors.Is(ctx.Err(), context.DeadlineExceeded)),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s %s: %w", store.ErrUnavailable, r.meta.Table(), op, err)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func toValues(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func toInt64(v any) int64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	}
	return 0
}

// Compile-time check
var _ store.Collection[models.AuditLog] = (*GormCollection[models.AuditLog])(nil)
