// Package memory is an in-process record store used by tests and by the
// STORE_DRIVER=memory development mode. Rows are copied on the way in and
// out so callers never share state with the store.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/opsdesk/internal/infra/rowmeta"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

type Option func(*options)

type options struct {
	unique []string
	now    func() time.Time
}

// WithUnique enforces a unique constraint on column, mirroring a
// uniqueIndex in the database schema.
func WithUnique(column string) Option {
	return func(o *options) { o.unique = append(o.unique, column) }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type Collection[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	seq   []string
	meta  *rowmeta.Meta[T]
	opts  options
	stamp map[string]bool
}

var _ store.Collection[models.Client] = (*Collection[models.Client])(nil)

func NewCollection[T any](opts ...Option) *Collection[T] {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	meta := rowmeta.MustFor[T]()
	for _, col := range o.unique {
		if !meta.HasColumn(col) {
			panic(fmt.Sprintf("memory: unique column %q not in %s", col, meta.Table()))
		}
	}
	return &Collection[T]{
		rows: make(map[string]T),
		meta: meta,
		opts: o,
		stamp: map[string]bool{
			"created_at":   meta.HasColumn("created_at"),
			"updated_at":   meta.HasColumn("updated_at"),
			"submitted_at": meta.HasColumn("submitted_at"),
		},
	}
}

func (c *Collection[T]) Insert(ctx context.Context, row *T) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *row
	id := c.meta.ID(&cp)
	if id == "" {
		id = uuid.NewString()
		if err := c.meta.SetID(&cp, id); err != nil {
			return "", err
		}
	}
	if _, exists := c.rows[id]; exists {
		return "", fmt.Errorf("%w: %s %s", store.ErrConflict, c.meta.Table(), id)
	}
	if col, ok := c.violatesUnique(&cp, ""); ok {
		return "", fmt.Errorf("%w: %s.%s", store.ErrConflict, c.meta.Table(), col)
	}

	now := c.opts.now()
	for col, has := range c.stamp {
		if has && c.meta.IsZero(&cp, col) {
			if err := c.meta.Set(&cp, col, now); err != nil {
				return "", err
			}
		}
	}

	c.rows[id] = cp
	c.seq = append(c.seq, id)
	*row = cp
	return id, nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.rows[id]
	if !ok {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, c.meta.Table(), id)
	}
	for col, v := range patch {
		if col == c.meta.PrimaryKey() {
			return fmt.Errorf("%s: primary key is immutable", c.meta.Table())
		}
		if err := c.meta.Set(&cur, col, v); err != nil {
			return err
		}
	}
	if col, bad := c.violatesUnique(&cur, id); bad {
		return fmt.Errorf("%w: %s.%s", store.ErrConflict, c.meta.Table(), col)
	}
	if c.stamp["updated_at"] {
		if _, explicit := patch["updated_at"]; !explicit {
			if err := c.meta.Set(&cur, "updated_at", c.opts.now()); err != nil {
				return err
			}
		}
	}
	c.rows[id] = cur
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rows[id]; !ok {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, c.meta.Table(), id)
	}
	delete(c.rows, id)
	for i, v := range c.seq {
		if v == id {
			c.seq = append(c.seq[:i], c.seq[i+1:]...)
			break
		}
	}
	return nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", store.ErrNotFound, c.meta.Table(), id)
	}
	return &row, nil
}

func (c *Collection[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	if err := c.checkColumns(q.Filters); err != nil {
		return nil, err
	}
	for _, o := range q.Order {
		if !c.meta.HasColumn(o.Field) {
			return nil, fmt.Errorf("%s: unknown order column %q", c.meta.Table(), o.Field)
		}
	}

	c.mu.RLock()
	out := make([]T, 0)
	for _, id := range c.seq {
		row := c.rows[id]
		if c.matches(&row, q.Filters) {
			out = append(out, row)
		}
	}
	c.mu.RUnlock()

	if len(q.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Order {
				a, _ := c.meta.Value(&out[i], o.Field)
				b, _ := c.meta.Value(&out[j], o.Field)
				cmp := compare(a, b)
				if cmp == 0 {
					continue
				}
				if o.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (c *Collection[T]) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	if err := c.checkColumns(filters); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, row := range c.rows {
		if c.matches(&row, filters) {
			n++
		}
	}
	return n, nil
}

func (c *Collection[T]) GroupCount(ctx context.Context, fields []string, filters ...store.Filter) ([]store.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: group count needs a column", c.meta.Table())
	}
	for _, f := range fields {
		if !c.meta.HasColumn(f) {
			return nil, fmt.Errorf("%s: unknown group column %q", c.meta.Table(), f)
		}
	}
	if err := c.checkColumns(filters); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := map[string]int{}
	out := make([]store.Group, 0)
	for _, id := range c.seq {
		row := c.rows[id]
		if !c.matches(&row, filters) {
			continue
		}
		values := make([]any, len(fields))
		for i, f := range fields {
			v, _ := c.meta.Value(&row, f)
			values[i] = deref(v)
		}
		key := fmt.Sprintf("%#v", values)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, store.Group{Values: values})
		}
		out[i].Count++
	}
	return out, nil
}

// Len is a test helper.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

func (c *Collection[T]) checkColumns(filters []store.Filter) error {
	for _, f := range filters {
		if !c.meta.HasColumn(f.Field) {
			return fmt.Errorf("%s: unknown filter column %q", c.meta.Table(), f.Field)
		}
	}
	return nil
}

func (c *Collection[T]) violatesUnique(row *T, self string) (string, bool) {
	for _, col := range c.opts.unique {
		v, _ := c.meta.Value(row, col)
		for id, other := range c.rows {
			if id == self {
				continue
			}
			ov, _ := c.meta.Value(&other, col)
			if compare(v, ov) == 0 {
				return col, true
			}
		}
	}
	return "", false
}

func (c *Collection[T]) matches(row *T, filters []store.Filter) bool {
	for _, f := range filters {
		v, _ := c.meta.Value(row, f.Field)
		if !match(v, f) {
			return false
		}
	}
	return true
}

func match(v any, f store.Filter) bool {
	switch f.Op {
	case store.OpEq:
		return compare(v, f.Value) == 0
	case store.OpNeq:
		return compare(v, f.Value) != 0
	case store.OpGte:
		return compare(v, f.Value) >= 0
	case store.OpLte:
		return compare(v, f.Value) <= 0
	case store.OpIn:
		rv := reflect.ValueOf(f.Value)
		if rv.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if compare(v, rv.Index(i).Interface()) == 0 {
				return true
			}
		}
		return false
	}
	return false
}

// compare orders the scalar kinds the models use. Values of unrelated kinds
// compare by their printed form.
func compare(a, b any) int {
	a, b = deref(a), deref(b)
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
