//go:build integration

package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/BruksfildServices01/opsdesk/internal/db"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	"github.com/BruksfildServices01/opsdesk/internal/testutil/containers"
)

type GormSuite struct {
	suite.Suite

	pg *containers.PostgresContainer
	gw *store.Gateway
}

func TestGormSuite(t *testing.T) {
	suite.Run(t, new(GormSuite))
}

func (s *GormSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(db.Migrate(s.pg.DB))
}

func (s *GormSuite) SetupTest() {
	for _, table := range []string{"audit_logs", "notifications", "clients", "products", "users", "pending_registrations", "identity_accounts"} {
		s.Require().NoError(s.pg.DB.Exec("TRUNCATE TABLE " + table).Error)
	}
	s.gw = NewGateway(s.pg.DB, 5*time.Second, zaptest.NewLogger(s.T()))
}

func (s *GormSuite) TestClientLifecycle() {
	ctx := context.Background()

	c := models.Client{Name: "Acme", Email: "ops@acme.io"}
	id, err := s.gw.Clients.Insert(ctx, &c)
	s.Require().NoError(err)
	s.Equal(id, c.ID)
	s.False(c.CreatedAt.IsZero())

	s.Require().NoError(s.gw.Clients.Update(ctx, id, map[string]any{"phone": "555"}))
	got, err := s.gw.Clients.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("555", got.Phone)

	s.Error(s.gw.Clients.Update(ctx, id, map[string]any{"no_such_column": 1}))

	s.Require().NoError(s.gw.Clients.Delete(ctx, id))
	_, err = s.gw.Clients.Get(ctx, id)
	s.ErrorIs(err, store.ErrNotFound)
	s.ErrorIs(s.gw.Clients.Delete(ctx, id), store.ErrNotFound)
	s.ErrorIs(s.gw.Clients.Update(ctx, id, map[string]any{"phone": "1"}), store.ErrNotFound)
}

func (s *GormSuite) TestMalformedIDIsNotFound() {
	_, err := s.gw.Clients.Get(context.Background(), "not-a-uuid")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *GormSuite) TestUniqueViolationIsConflict() {
	ctx := context.Background()

	_, err := s.gw.Pending.Insert(ctx, &models.PendingRegistration{
		Username: "alice", FullName: "Alice", PasswordSecret: "x", RequestedRole: "user", SubmittedAt: time.Now(),
	})
	s.Require().NoError(err)

	_, err = s.gw.Pending.Insert(ctx, &models.PendingRegistration{
		Username: "alice", FullName: "Other", PasswordSecret: "y", RequestedRole: "user", SubmittedAt: time.Now(),
	})
	s.ErrorIs(err, store.ErrConflict)
}

func (s *GormSuite) TestInactiveUserStaysInactive() {
	ctx := context.Background()
	u := models.User{Email: "bob@x.io", Username: "bob", FullName: "Bob", Role: "user", IsActive: false}
	id, err := s.gw.Users.Insert(ctx, &u)
	s.Require().NoError(err)

	got, err := s.gw.Users.Get(ctx, id)
	s.Require().NoError(err)
	s.False(got.IsActive)
}

func (s *GormSuite) TestQueryFiltersOrderAndLimit() {
	ctx := context.Background()
	for _, u := range []models.User{
		{Email: "a@x.io", Username: "a", FullName: "A", Role: "admin", IsActive: true},
		{Email: "b@x.io", Username: "b", FullName: "B", Role: "manager", IsActive: true},
		{Email: "c@x.io", Username: "c", FullName: "C", Role: "user", IsActive: true},
		{Email: "d@x.io", Username: "d", FullName: "D", Role: "admin", IsActive: false},
	} {
		_, err := s.gw.Users.Insert(ctx, &u)
		s.Require().NoError(err)
	}

	rows, err := s.gw.Users.Query(ctx, store.Query{
		Filters: []store.Filter{
			store.In("role", []string{"admin", "manager"}),
			store.Eq("is_active", true),
		},
		Order: []store.Order{{Field: "username", Desc: true}},
	})
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("b", rows[0].Username)

	rows, err = s.gw.Users.Query(ctx, store.Query{Order: []store.Order{{Field: "username"}}, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("a", rows[0].Username)

	n, err := s.gw.Users.Count(ctx, store.Neq("role", "admin"))
	s.Require().NoError(err)
	s.EqualValues(2, n)

	_, err = s.gw.Users.Query(ctx, store.Query{Filters: []store.Filter{store.Eq("password", "x")}})
	s.Error(err)
}

func (s *GormSuite) TestGroupCount() {
	ctx := context.Background()
	for _, u := range []models.User{
		{Email: "a@x.io", Username: "a", FullName: "A", Role: "admin", IsActive: true},
		{Email: "b@x.io", Username: "b", FullName: "B", Role: "user", IsActive: true},
		{Email: "c@x.io", Username: "c", FullName: "C", Role: "user", IsActive: true},
		{Email: "d@x.io", Username: "d", FullName: "D", Role: "user", IsActive: false},
	} {
		_, err := s.gw.Users.Insert(ctx, &u)
		s.Require().NoError(err)
	}

	groups, err := s.gw.Users.GroupCount(ctx, []string{"role"}, store.Eq("is_active", true))
	s.Require().NoError(err)
	counts := map[string]int64{}
	for _, g := range groups {
		role, _ := g.Values[0].(string)
		counts[role] = g.Count
	}
	s.Equal(map[string]int64{"admin": 1, "user": 2}, counts)

	_, err = s.gw.Users.GroupCount(ctx, []string{"password"})
	s.Error(err)
}

func (s *GormSuite) TestAuditSnapshotsRoundTrip() {
	ctx := context.Background()
	before, _ := json.Marshal(models.Client{Name: "Old"})

	entry := models.AuditLog{
		ActorEmail: "ana@x.io",
		Action:     "DELETE",
		EntityType: "clients",
		Before:     datatypes.JSON(before),
		CreatedAt:  time.Now().UTC(),
	}
	id, err := s.gw.AuditLogs.Insert(ctx, &entry)
	s.Require().NoError(err)

	got, err := s.gw.AuditLogs.Get(ctx, id)
	s.Require().NoError(err)
	s.Empty(got.After)

	var c models.Client
	s.Require().NoError(json.Unmarshal(got.Before, &c))
	s.Equal("Old", c.Name)

	from := entry.CreatedAt.Add(-time.Minute)
	rows, err := s.gw.AuditLogs.Query(ctx, store.Query{Filters: []store.Filter{
		store.Gte("created_at", from),
		store.Lte("created_at", from.Add(2*time.Minute)),
	}})
	s.Require().NoError(err)
	s.Len(rows, 1)
}

func (s *GormSuite) TestIdentityAccounts() {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	s.Require().NoError(err)

	id, err := s.gw.Identity.CreateAccount(ctx, "ana@x.io", string(hash))
	s.Require().NoError(err)

	again, err := s.gw.Identity.CreateAccount(ctx, "ANA@x.io", string(hash))
	s.Require().NoError(err)
	s.Equal(id, again)

	got, err := s.gw.Identity.Authenticate(ctx, "ana@x.io", "password1")
	s.Require().NoError(err)
	s.Equal(id, got)
}
