// Package testutil provides shared helpers for package and handler tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/BruksfildServices01/opsdesk/internal/store"
)

var ErrInjected = errors.New("injected store failure")

// Faulty wraps a collection and fails selected operations on demand.
type Faulty[T any] struct {
	store.Collection[T]

	mu    sync.Mutex
	fails map[string]error
	calls map[string]int
}

func NewFaulty[T any](inner store.Collection[T]) *Faulty[T] {
	return &Faulty[T]{
		Collection: inner,
		fails:      map[string]error{},
		calls:      map[string]int{},
	}
}

// Fail makes op ("insert", "update", "delete", "get", "query", "count",
// "group")
// return err until Heal is called.
func (f *Faulty[T]) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fails[op] = err
}

func (f *Faulty[T]) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fails = map[string]error{}
}

func (f *Faulty[T]) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Faulty[T]) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fails[op]
}

func (f *Faulty[T]) Insert(ctx context.Context, row *T) (string, error) {
	if err := f.check("insert"); err != nil {
		return "", err
	}
	return f.Collection.Insert(ctx, row)
}

func (f *Faulty[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	if err := f.check("update"); err != nil {
		return err
	}
	return f.Collection.Update(ctx, id, patch)
}

func (f *Faulty[T]) Delete(ctx context.Context, id string) error {
	if err := f.check("delete"); err != nil {
		return err
	}
	return f.Collection.Delete(ctx, id)
}

func (f *Faulty[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := f.check("get"); err != nil {
		return nil, err
	}
	return f.Collection.Get(ctx, id)
}

func (f *Faulty[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	if err := f.check("query"); err != nil {
		return nil, err
	}
	return f.Collection.Query(ctx, q)
}

func (f *Faulty[T]) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	if err := f.check("count"); err != nil {
		return 0, err
	}
	return f.Collection.Count(ctx, filters...)
}

func (f *Faulty[T]) GroupCount(ctx context.Context, fields []string, filters ...store.Filter) ([]store.Group, error) {
	if err := f.check("group"); err != nil {
		return nil, err
	}
	return f.Collection.GroupCount(ctx, fields, filters...)
}
