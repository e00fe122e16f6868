package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	activedomain "github.com/openorgs/orgd/internal/activeorg/domain"
	"github.com/openorgs/orgd/internal/apperr"
	"github.com/openorgs/orgd/internal/clock"
	"github.com/openorgs/orgd/internal/config"
	identitydomain "github.com/openorgs/orgd/internal/identity/domain"
	identityrepo "github.com/openorgs/orgd/internal/identity/repository"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
	orgrepo "github.com/openorgs/orgd/internal/organization/repository"
	"github.com/openorgs/orgd/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	svc activedomain.Service
	mgr *tokens.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT,
			active_org_id INTEGER,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE organizations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE organization_members (
			id INTEGER PRIMARY KEY,
			org_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			created_at DATETIME
		)`,
	}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}

	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	holder := tokens.NewStaticSettingsHolder(tokens.DefaultSettings())
	mgr := tokens.NewManager(tokens.Params{
		Config: config.Config{
			TokenSigningSecret: "test-secret",
			TokenIssuer:        "orgd-test",
		},
		Settings: holder,
		Clock:    fake,
	})

	svc := NewService(Params{
		DB:           db,
		Log:          zaptest.NewLogger(t),
		OrgRepo:      orgrepo.Provide(),
		IdentityRepo: identityrepo.Provide(),
		Tokens:       mgr,
	})

	return &fixture{db: db, svc: svc, mgr: mgr}
}

func (f *fixture) seedUser(t *testing.T, id snowflake.ID, username string, activeOrg *int64) {
	t.Helper()
	require.NoError(t, f.db.Create(&identitydomain.User{ID: id, Username: username, ActiveOrgID: activeOrg}).Error)
}

func (f *fixture) seedOrg(t *testing.T, id snowflake.ID, name string) {
	t.Helper()
	require.NoError(t, f.db.Create(&orgdomain.Organization{ID: id, Name: name, Slug: name}).Error)
}

func (f *fixture) seedMember(t *testing.T, id, orgID, userID snowflake.ID) {
	t.Helper()
	require.NoError(t, f.db.Create(&orgdomain.Member{ID: id, OrgID: orgID, UserID: userID}).Error)
}

func int64Ptr(v int64) *int64 { return &v }

func TestGetActiveNoOrganizations(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "alice", nil)

	_, err := f.svc.GetActive(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "No available organizations.", err.Error())
}

func TestGetActiveUnsetAttribute(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "alice", nil)
	f.seedOrg(t, 10, "acme")
	f.seedMember(t, 100, 10, 1)

	// Member of an org but nothing selected: no silent fallback.
	_, err := f.svc.GetActive(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestGetActiveStaleAttribute(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "alice", int64Ptr(20))
	f.seedOrg(t, 10, "acme")
	f.seedOrg(t, 20, "globex")
	f.seedMember(t, 100, 10, 1)

	_, err := f.svc.GetActive(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestGetActiveValid(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "alice", int64Ptr(10))
	f.seedOrg(t, 10, "acme")
	f.seedMember(t, 100, 10, 1)

	org, err := f.svc.GetActive(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Name)
}

func TestSwitchUnknownOrg(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "alice", nil)

	_, err := f.svc.Switch(context.Background(), 1, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "999 not found", err.Error())
}

func TestSwitchNonMemberDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "alice", int64Ptr(10))
	f.seedOrg(t, 10, "acme")
	f.seedOrg(t, 20, "globex")
	f.seedMember(t, 100, 10, 1)

	_, err := f.svc.Switch(context.Background(), 1, 20)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	assert.Equal(t, "Not a member of this organization.", err.Error())

	var user identitydomain.User
	require.NoError(t, f.db.First(&user, "id = ?", 1).Error)
	require.NotNil(t, user.ActiveOrgID)
	assert.Equal(t, int64(10), *user.ActiveOrgID)
}

func TestSwitchReplacesSelectionAndIssuesBundle(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "alice", int64Ptr(10))
	f.seedOrg(t, 10, "acme")
	f.seedOrg(t, 20, "globex")
	f.seedMember(t, 100, 10, 1)
	f.seedMember(t, 101, 20, 1)

	bundle, err := f.svc.Switch(context.Background(), 1, 20)
	require.NoError(t, err)
	require.NotEmpty(t, bundle.AccessToken)
	assert.Equal(t, "Bearer", bundle.TokenType)

	claims, err := f.mgr.Verify(bundle.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "20", claims.ActiveOrgID)

	// Querying afterwards returns the new selection, not the old one.
	org, err := f.svc.GetActive(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "globex", org.Name)
}
