package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/infra/memory"
)

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)
	mem := memory.NewStore()
	gw := mem.Gateway()
	recorder := audit.NewRecorder(gw.AuditLogs, log)

	first, err := EnsureAdmin(ctx, gw, recorder, "opsdesk.test", "Root", "rootpassword", log)
	require.NoError(t, err)
	assert.Equal(t, "root", first.Username)
	assert.Equal(t, "admin", first.Role)
	assert.Equal(t, "root@opsdesk.test", first.Email)

	second, err := EnsureAdmin(ctx, gw, recorder, "opsdesk.test", "root", "rootpassword", log)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 1, mem.Users.Len())
	assert.Equal(t, 1, mem.Accounts.Len())
	assert.Equal(t, 1, mem.AuditLogs.Len())

	id, err := gw.Identity.Authenticate(ctx, "root@opsdesk.test", "rootpassword")
	require.NoError(t, err)
	assert.Equal(t, first.ID, id)
}

func TestEnsureAdminValidatesInput(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)
	gw := memory.NewGateway()
	recorder := audit.NewRecorder(gw.AuditLogs, log)

	_, err := EnsureAdmin(ctx, gw, recorder, "opsdesk.test", "x", "rootpassword", log)
	assert.Error(t, err)

	_, err = EnsureAdmin(ctx, gw, recorder, "opsdesk.test", "root", "short", log)
	assert.Error(t, err)
}
