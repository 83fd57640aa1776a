package record

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/infra/memory"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	"github.com/BruksfildServices01/opsdesk/internal/testutil"
)

var ana = audit.Actor{ID: "u-ana", Email: "ana@opsdesk.local", DisplayName: "Ana"}

type fixture struct {
	clients *memory.Collection[models.Client]
	logs    *memory.Collection[models.AuditLog]
	faulty  *testutil.Faulty[models.AuditLog]
	svc     *Service[models.Client]
}

func newFixture(t *testing.T, opts ...memory.Option) *fixture {
	t.Helper()
	f := &fixture{
		clients: memory.NewCollection[models.Client](opts...),
		logs:    memory.NewCollection[models.AuditLog](),
	}
	f.faulty = testutil.NewFaulty[models.AuditLog](f.logs)
	log := zaptest.NewLogger(t)
	f.svc = NewService[models.Client](f.clients, audit.NewRecorder(f.faulty, log), ClientOptions(), log)
	return f
}

func (f *fixture) entries(t *testing.T) []models.AuditLog {
	t.Helper()
	rows, err := f.logs.Query(context.Background(), store.Query{
		Order: []store.Order{{Field: "created_at"}},
	})
	require.NoError(t, err)
	return rows
}

func TestCreateIsAudited(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Create(context.Background(), ana, &models.Client{Name: "  Acme ", Email: "Ops@Acme.io"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "ops@acme.io", c.Email)

	logs := f.entries(t)
	require.Len(t, logs, 1)
	assert.Equal(t, string(auditlog.ActionCreate), logs[0].Action)
	assert.Equal(t, string(auditlog.EntityClients), logs[0].EntityType)
	assert.Equal(t, c.ID, logs[0].EntityID)
	assert.Equal(t, "Acme", logs[0].Detail)
	assert.Equal(t, ana.Email, logs[0].ActorEmail)
	assert.Nil(t, logs[0].Before)

	var after models.Client
	require.NoError(t, json.Unmarshal(logs[0].After, &after))
	assert.Equal(t, c.ID, after.ID)
}

func TestCreateValidationSkipsStoreAndAudit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), ana, &models.Client{Name: " "})
	assert.True(t, httperr.IsBusiness(err, "client_name_required"))
	assert.Equal(t, 0, f.clients.Len())
	assert.Equal(t, 0, f.logs.Len())
}

func TestUpdateCarriesBeforeAndAfter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, ana, &models.Client{Name: "Acme", Phone: "111"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, ana, c.ID, map[string]any{"phone": "222", "name": "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "222", updated.Phone)

	logs := f.entries(t)
	require.Len(t, logs, 2)
	u := logs[1]
	assert.Equal(t, string(auditlog.ActionUpdate), u.Action)
	assert.Equal(t, c.ID, u.EntityID)
	assert.Equal(t, "Acme Corp", u.Detail)

	var before, after models.Client
	require.NoError(t, json.Unmarshal(u.Before, &before))
	require.NoError(t, json.Unmarshal(u.After, &after))
	assert.Equal(t, "111", before.Phone)
	assert.Equal(t, "222", after.Phone)
}

func TestUpdateRejectsUnknownOrLockedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, ana, &models.Client{Name: "Acme"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, ana, c.ID, map[string]any{"id": "other"})
	assert.True(t, httperr.IsBusiness(err, "field_not_editable"))

	_, err = f.svc.Update(ctx, ana, c.ID, map[string]any{"created_at": "2020-01-01"})
	assert.True(t, httperr.IsBusiness(err, "field_not_editable"))

	_, err = f.svc.Update(ctx, ana, c.ID, map[string]any{})
	assert.True(t, httperr.IsBusiness(err, "empty_patch"))

	_, err = f.svc.Update(ctx, ana, c.ID, map[string]any{"name": ""})
	assert.True(t, httperr.IsBusiness(err, "client_name_required"))

	assert.Len(t, f.entries(t), 1)
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), ana, "nope", map[string]any{"phone": "1"})
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
	assert.True(t, httperr.IsBusiness(err, "client_not_found"))
	assert.Equal(t, 0, f.logs.Len())
}

func TestDeleteCarriesBeforeOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, ana, &models.Client{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, ana, c.ID))

	_, err = f.svc.Get(ctx, c.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	logs := f.entries(t)
	require.Len(t, logs, 2)
	d := logs[1]
	assert.Equal(t, string(auditlog.ActionDelete), d.Action)
	assert.Equal(t, "Acme", d.Detail)
	assert.NotEmpty(t, d.Before)
	assert.Nil(t, d.After)

	err = f.svc.Delete(ctx, ana, c.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}

func TestAuditFailureKeepsMutation(t *testing.T) {
	f := newFixture(t)
	f.faulty.Fail("insert", testutil.ErrInjected)

	c, err := f.svc.Create(context.Background(), ana, &models.Client{Name: "Acme"})
	assert.True(t, httperr.IsKind(err, httperr.KindPartial))
	require.NotNil(t, c)
	assert.Equal(t, 1, f.clients.Len())
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, n := range []string{"a", "b", "c"} {
		_, err := f.clients.Insert(ctx, &models.Client{Name: n})
		require.NoError(t, err)
	}

	rows, err := f.svc.List(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

// --------------------------------------------------
// Bulk
// --------------------------------------------------

func TestBulkCreateRecordsOneEntry(t *testing.T) {
	f := newFixture(t)

	rows, err := f.svc.BulkCreate(context.Background(), ana, []models.Client{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.NotEmpty(t, r.ID)
	}

	logs := f.entries(t)
	require.Len(t, logs, 1)
	assert.Equal(t, string(auditlog.ActionBulkCreate), logs[0].Action)
	assert.Equal(t, "3 of 3 clients created", logs[0].Detail)

	var after []models.Client
	require.NoError(t, json.Unmarshal(logs[0].After, &after))
	assert.Len(t, after, 3)
}

func TestBulkCreateAuditsCommittedPrefix(t *testing.T) {
	f := newFixture(t, memory.WithUnique("email"))

	rows, err := f.svc.BulkCreate(context.Background(), ana, []models.Client{
		{Name: "a", Email: "a@x.io"},
		{Name: "b", Email: "b@x.io"},
		{Name: "dup", Email: "a@x.io"},
		{Name: "d", Email: "d@x.io"},
	})
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, f.clients.Len())

	logs := f.entries(t)
	require.Len(t, logs, 1)
	assert.Equal(t, "2 of 4 clients created", logs[0].Detail)
}

func TestBulkCreateLimits(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BulkCreate(context.Background(), ana, nil)
	assert.True(t, httperr.IsBusiness(err, "empty_batch"))

	_, err = f.svc.BulkCreate(context.Background(), ana, make([]models.Client, MaxBulk+1))
	assert.True(t, httperr.IsBusiness(err, "batch_too_large"))

	_, err = f.svc.BulkCreate(context.Background(), ana, []models.Client{{Name: "ok"}, {Name: ""}})
	assert.True(t, httperr.IsBusiness(err, "client_name_required"))
	assert.Equal(t, 0, f.clients.Len())
}

func TestBulkDeleteSkipsMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.BulkCreate(ctx, ana, []models.Client{{Name: "a"}, {Name: "b"}})
	require.NoError(t, err)

	deleted, err := f.svc.BulkDelete(ctx, ana, []string{created[0].ID, "ghost", created[1].ID})
	require.NoError(t, err)
	assert.Len(t, deleted, 2)
	assert.Equal(t, 0, f.clients.Len())

	logs := f.entries(t)
	require.Len(t, logs, 2)
	assert.Equal(t, string(auditlog.ActionBulkDelete), logs[1].Action)
	assert.Equal(t, "2 of 3 clients deleted", logs[1].Detail)
	assert.NotEmpty(t, logs[1].Before)
	assert.Nil(t, logs[1].After)

	deleted, err = f.svc.BulkDelete(ctx, ana, []string{"ghost"})
	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.Len(t, f.entries(t), 2)
}

// --------------------------------------------------
// Entity options
// --------------------------------------------------

func TestUserOptions(t *testing.T) {
	opts := UserOptions()

	assert.Error(t, opts.Validate(&models.User{Username: "x"}))

	patch := map[string]any{"role": " Manager ", "full_name": "  Ana Maria "}
	require.NoError(t, opts.ValidatePatch(patch))
	assert.Equal(t, "manager", patch["role"])
	assert.Equal(t, "Ana Maria", patch["full_name"])

	assert.True(t, httperr.IsBusiness(opts.ValidatePatch(map[string]any{"role": ""}), "invalid_role"))
	assert.True(t, httperr.IsBusiness(opts.ValidatePatch(map[string]any{"role": "owner"}), "invalid_role"))
	assert.True(t, httperr.IsBusiness(opts.ValidatePatch(map[string]any{"is_active": "yes"}), "invalid_is_active"))
}

func TestProductOptions(t *testing.T) {
	opts := ProductOptions()

	assert.True(t, httperr.IsBusiness(opts.Validate(&models.Product{Name: "x", Price: -1}), "invalid_price"))
	assert.True(t, httperr.IsBusiness(opts.ValidatePatch(map[string]any{"price": -0.5}), "invalid_price"))
	assert.NoError(t, opts.ValidatePatch(map[string]any{"price": 10.0, "active": false}))
}
