// Package record is the audited CRUD service shared by every business
// collection. Each mutation commits first and is then recorded; a failed
// audit write comes back as a Partial error next to the committed result.
package record

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
	MaxBulk      = 500
)

type Options[T any] struct {
	Entity auditlog.EntityType
	// Patchable lists the columns Update accepts.
	Patchable []string
	Validate  func(row *T) error
	// ValidatePatch runs after the column check.
	ValidatePatch func(patch map[string]any) error
	// Describe labels a row in audit details, e.g. the client name.
	Describe func(row *T) string
}

type Service[T any] struct {
	rows     store.Collection[T]
	recorder *audit.Recorder
	opts     Options[T]
	log      *zap.Logger
}

func NewService[T any](
	rows store.Collection[T],
	recorder *audit.Recorder,
	opts Options[T],
	log *zap.Logger,
) *Service[T] {
	return &Service[T]{
		rows:     rows,
		recorder: recorder,
		opts:     opts,
		log:      log.With(zap.String("entity_type", string(opts.Entity))),
	}
}

func (s *Service[T]) code(suffix string) string {
	return s.opts.Entity.Singular() + "_" + suffix
}

func (s *Service[T]) describe(row *T) string {
	if row == nil || s.opts.Describe == nil {
		return ""
	}
	return s.opts.Describe(row)
}

// ===============================
// Reads
// ===============================

func (s *Service[T]) Get(ctx context.Context, id string) (*T, error) {
	row, err := s.rows.Get(ctx, id)
	if err != nil {
		return nil, httperr.FromStore(err, s.code("not_found"))
	}
	return row, nil
}

// List returns rows newest first.
func (s *Service[T]) List(ctx context.Context, filters []store.Filter, limit int) ([]T, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	rows, err := s.rows.Query(ctx, store.Query{
		Filters: filters,
		Order:   []store.Order{{Field: "created_at", Desc: true}},
		Limit:   limit,
	})
	if err != nil {
		return nil, httperr.FromStore(err, s.code("list_failed"))
	}
	return rows, nil
}

// ===============================
// Single-row mutations
// ===============================

func (s *Service[T]) Create(ctx context.Context, actor audit.Actor, row *T) (*T, error) {
	if s.opts.Validate != nil {
		if err := s.opts.Validate(row); err != nil {
			return nil, err
		}
	}

	return audit.Run(ctx, s.recorder, audit.Mutation[T]{
		Actor:      actor,
		Action:     auditlog.ActionCreate,
		EntityType: s.opts.Entity,
		Detail:     s.describe(row),
		Apply: func(ctx context.Context, _ *T) (*T, error) {
			if _, err := s.rows.Insert(ctx, row); err != nil {
				return nil, httperr.FromStore(err, s.code("already_exists"))
			}
			return row, nil
		},
	})
}

func (s *Service[T]) Update(ctx context.Context, actor audit.Actor, id string, patch map[string]any) (*T, error) {
	if len(patch) == 0 {
		return nil, httperr.ErrBusiness("empty_patch")
	}
	if err := s.checkPatch(patch); err != nil {
		return nil, err
	}

	return audit.Run(ctx, s.recorder, audit.Mutation[T]{
		Actor:      actor,
		Action:     auditlog.ActionUpdate,
		EntityType: s.opts.Entity,
		EntityID:   id,
		Describe: func(_, after *T) string {
			return s.describe(after)
		},
		Load: func(ctx context.Context) (*T, error) {
			return s.Get(ctx, id)
		},
		Apply: func(ctx context.Context, _ *T) (*T, error) {
			if err := s.rows.Update(ctx, id, patch); err != nil {
				return nil, httperr.FromStore(err, s.code("not_found"))
			}
			return s.Get(ctx, id)
		},
	})
}

func (s *Service[T]) checkPatch(patch map[string]any) error {
	allowed := make(map[string]bool, len(s.opts.Patchable))
	for _, col := range s.opts.Patchable {
		allowed[col] = true
	}
	for col := range patch {
		if !allowed[col] {
			return httperr.ErrBusiness("field_not_editable")
		}
	}
	if s.opts.ValidatePatch != nil {
		return s.opts.ValidatePatch(patch)
	}
	return nil
}

func (s *Service[T]) Delete(ctx context.Context, actor audit.Actor, id string) error {
	_, err := audit.Run(ctx, s.recorder, audit.Mutation[T]{
		Actor:      actor,
		Action:     auditlog.ActionDelete,
		EntityType: s.opts.Entity,
		EntityID:   id,
		Describe: func(before, _ *T) string {
			return s.describe(before)
		},
		Load: func(ctx context.Context) (*T, error) {
			return s.Get(ctx, id)
		},
		Apply: func(ctx context.Context, _ *T) (*T, error) {
			if err := s.rows.Delete(ctx, id); err != nil {
				return nil, httperr.FromStore(err, s.code("not_found"))
			}
			return nil, nil
		},
	})
	return err
}

// ===============================
// Bulk mutations
// ===============================

// BulkCreate inserts rows in order and records one BULK_CREATE entry for
// whatever committed, even when a later row fails.
func (s *Service[T]) BulkCreate(ctx context.Context, actor audit.Actor, rows []T) ([]T, error) {
	if len(rows) == 0 {
		return nil, httperr.ErrBusiness("empty_batch")
	}
	if len(rows) > MaxBulk {
		return nil, httperr.ErrBusiness("batch_too_large")
	}
	if s.opts.Validate != nil {
		for i := range rows {
			if err := s.opts.Validate(&rows[i]); err != nil {
				return nil, err
			}
		}
	}

	committed := make([]T, 0, len(rows))
	var failure error
	for i := range rows {
		row := rows[i]
		if _, err := s.rows.Insert(ctx, &row); err != nil {
			failure = httperr.FromStore(err, s.code("bulk_create_failed"))
			s.log.Warn("bulk create stopped",
				zap.Int("committed", len(committed)),
				zap.Int("requested", len(rows)),
				zap.Error(err),
			)
			break
		}
		committed = append(committed, row)
	}

	if len(committed) == 0 {
		return nil, failure
	}
	partial := s.recordBulk(ctx, actor, auditlog.ActionBulkCreate, nil, committed,
		fmt.Sprintf("%d of %d %ss created", len(committed), len(rows), s.opts.Entity.Singular()))
	if failure != nil {
		return committed, failure
	}
	return committed, partial
}

// BulkDelete removes every id that still exists. Missing ids are skipped.
func (s *Service[T]) BulkDelete(ctx context.Context, actor audit.Actor, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, httperr.ErrBusiness("empty_batch")
	}
	if len(ids) > MaxBulk {
		return nil, httperr.ErrBusiness("batch_too_large")
	}

	deleted := make([]T, 0, len(ids))
	var failure error
	for _, id := range ids {
		row, err := s.rows.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err == nil {
			err = s.rows.Delete(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
		}
		if err != nil {
			failure = httperr.FromStore(err, s.code("bulk_delete_failed"))
			s.log.Warn("bulk delete stopped",
				zap.Int("deleted", len(deleted)),
				zap.Int("requested", len(ids)),
				zap.Error(err),
			)
			break
		}
		deleted = append(deleted, *row)
	}

	if len(deleted) == 0 {
		return deleted, failure
	}
	partial := s.recordBulk(ctx, actor, auditlog.ActionBulkDelete, deleted, nil,
		fmt.Sprintf("%d of %d %ss deleted", len(deleted), len(ids), s.opts.Entity.Singular()))
	if failure != nil {
		return deleted, failure
	}
	return deleted, partial
}

func (s *Service[T]) recordBulk(ctx context.Context, actor audit.Actor, action auditlog.Action, before, after []T, detail string) error {
	_, err := s.recorder.Record(ctx, audit.Entry{
		Actor:      actor,
		Action:     action,
		EntityType: s.opts.Entity,
		Before:     before,
		After:      after,
		Detail:     detail,
	})
	if err != nil {
		s.log.Error("audit write failed after bulk mutation",
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return httperr.Partial("audit_write_failed", err)
	}
	return nil
}
