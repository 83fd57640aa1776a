package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/infra/memory"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	"github.com/BruksfildServices01/opsdesk/internal/testutil"
)

type captured struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (c *captured) OnRecorded(e models.AuditLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

var alice = Actor{ID: "u-1", Email: "alice@opsdesk.local", DisplayName: "Alice"}

func TestRecordCreateHasNoBeforeSnapshot(t *testing.T) {
	logs := memory.NewCollection[models.AuditLog]()
	listener := &captured{}
	r := NewRecorder(logs, zaptest.NewLogger(t), listener)

	client := &models.Client{ID: "c-1", Name: "Acme"}
	entry, err := r.Record(context.Background(), Entry{
		Actor:      alice,
		Action:     auditlog.ActionCreate,
		EntityType: auditlog.EntityClients,
		EntityID:   client.ID,
		Before:     (*models.Client)(nil),
		After:      client,
		Detail:     "Acme",
	})
	require.NoError(t, err)

	assert.Nil(t, entry.Before)
	require.NotNil(t, entry.After)

	var after models.Client
	require.NoError(t, json.Unmarshal(entry.After, &after))
	assert.Equal(t, "Acme", after.Name)

	assert.Equal(t, 1, logs.Len())
	require.Len(t, listener.entries, 1)
	assert.Equal(t, entry.ID, listener.entries[0].ID)
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	r := NewRecorder(memory.NewCollection[models.AuditLog](), zaptest.NewLogger(t))

	_, err := r.Record(context.Background(), Entry{
		Actor:      alice,
		Action:     "ARCHIVE",
		EntityType: auditlog.EntityClients,
	})
	assert.Error(t, err)
}

func TestRecordInsertFailureSkipsListeners(t *testing.T) {
	logs := testutil.NewFaulty[models.AuditLog](memory.NewCollection[models.AuditLog]())
	logs.Fail("insert", testutil.ErrInjected)
	listener := &captured{}
	r := NewRecorder(logs, zaptest.NewLogger(t), listener)

	_, err := r.Record(context.Background(), Entry{
		Actor:      alice,
		Action:     auditlog.ActionDelete,
		EntityType: auditlog.EntityClients,
	})
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Empty(t, listener.entries)
}

func TestRunKeepsMutationWhenAuditFails(t *testing.T) {
	ctx := context.Background()
	clients := memory.NewCollection[models.Client]()
	logs := testutil.NewFaulty[models.AuditLog](memory.NewCollection[models.AuditLog]())
	logs.Fail("insert", testutil.ErrInjected)
	r := NewRecorder(logs, zaptest.NewLogger(t))

	row := &models.Client{Name: "Acme"}
	got, err := Run(ctx, r, Mutation[models.Client]{
		Actor:      alice,
		Action:     auditlog.ActionCreate,
		EntityType: auditlog.EntityClients,
		Apply: func(ctx context.Context, _ *models.Client) (*models.Client, error) {
			_, err := clients.Insert(ctx, row)
			return row, err
		},
	})

	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindPartial))
	require.NotNil(t, got)
	assert.Equal(t, 1, clients.Len())
}

func TestRunAbortsBeforeAuditWhenApplyFails(t *testing.T) {
	logs := memory.NewCollection[models.AuditLog]()
	r := NewRecorder(logs, zaptest.NewLogger(t))
	boom := errors.New("boom")

	_, err := Run(context.Background(), r, Mutation[models.Client]{
		Actor:      alice,
		Action:     auditlog.ActionCreate,
		EntityType: auditlog.EntityClients,
		Apply: func(context.Context, *models.Client) (*models.Client, error) {
			return nil, boom
		},
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, logs.Len())
}

func TestRunDeleteCarriesBeforeOnly(t *testing.T) {
	ctx := context.Background()
	logs := memory.NewCollection[models.AuditLog]()
	r := NewRecorder(logs, zaptest.NewLogger(t))
	existing := &models.Client{ID: "c-9", Name: "Gone"}

	_, err := Run(ctx, r, Mutation[models.Client]{
		Actor:      alice,
		Action:     auditlog.ActionDelete,
		EntityType: auditlog.EntityClients,
		Describe: func(before, _ *models.Client) string {
			return before.Name
		},
		Load: func(context.Context) (*models.Client, error) { return existing, nil },
		Apply: func(context.Context, *models.Client) (*models.Client, error) {
			return nil, nil
		},
	})
	require.NoError(t, err)

	rows, err := logs.Query(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c-9", rows[0].EntityID)
	assert.Equal(t, "Gone", rows[0].Detail)
	assert.NotNil(t, rows[0].Before)
	assert.Nil(t, rows[0].After)
}
