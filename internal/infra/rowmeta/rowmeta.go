// Package rowmeta reads and writes model columns by their database name,
// using the same schema gorm derives from the struct tags.
package rowmeta

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm/schema"
)

var cache sync.Map

type Meta[T any] struct {
	sch *schema.Schema
}

func For[T any]() (*Meta[T], error) {
	sch, err := schema.Parse(new(T), &cache, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("parse schema %T: %w", *new(T), err)
	}
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("%s has no primary key", sch.Name)
	}
	return &Meta[T]{sch: sch}, nil
}

// MustFor panics on models without a parsable schema; models are fixed at
// compile time so this only fails on programmer error.
func MustFor[T any]() *Meta[T] {
	m, err := For[T]()
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Meta[T]) Table() string {
	return m.sch.Table
}

func (m *Meta[T]) PrimaryKey() string {
	return m.sch.PrioritizedPrimaryField.DBName
}

func (m *Meta[T]) HasColumn(column string) bool {
	_, ok := m.sch.FieldsByDBName[column]
	return ok
}

func (m *Meta[T]) ID(row *T) string {
	v, _ := m.Value(row, m.PrimaryKey())
	s, _ := v.(string)
	return s
}

func (m *Meta[T]) SetID(row *T, id string) error {
	return m.Set(row, m.PrimaryKey(), id)
}

func (m *Meta[T]) Value(row *T, column string) (any, bool) {
	f, ok := m.sch.FieldsByDBName[column]
	if !ok {
		return nil, false
	}
	v, _ := f.ValueOf(context.Background(), reflect.ValueOf(row).Elem())
	return v, true
}

func (m *Meta[T]) Set(row *T, column string, value any) error {
	f, ok := m.sch.FieldsByDBName[column]
	if !ok {
		return fmt.Errorf("%s: unknown column %q", m.sch.Table, column)
	}
	return f.Set(context.Background(), reflect.ValueOf(row).Elem(), value)
}

// IsZero reports whether the column holds its type's zero value.
func (m *Meta[T]) IsZero(row *T, column string) bool {
	f, ok := m.sch.FieldsByDBName[column]
	if !ok {
		return true
	}
	_, zero := f.ValueOf(context.Background(), reflect.ValueOf(row).Elem())
	return zero
}
