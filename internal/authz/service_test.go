package authz

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openorgs/orgd/internal/apperr"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
	"github.com/openorgs/orgd/internal/organization/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE organizations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE organization_roles (
			id INTEGER PRIMARY KEY,
			org_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			created_at DATETIME,
			UNIQUE (org_id, name)
		)`,
		`CREATE TABLE organization_members (
			id INTEGER PRIMARY KEY,
			org_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			created_at DATETIME
		)`,
		`CREATE TABLE organization_role_mappings (
			id INTEGER PRIMARY KEY,
			role_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			created_at DATETIME
		)`,
	}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *ServiceImpl {
	t.Helper()
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	svc := NewService(Params{
		DB:       db,
		Log:      zaptest.NewLogger(t),
		Enforcer: enforcer,
		OrgRepo:  repository.Provide(),
	})
	return svc.(*ServiceImpl)
}

func seedOrgWithAdmin(t *testing.T, db *gorm.DB, orgID, adminRoleID, userID snowflake.ID, name string) {
	t.Helper()
	require.NoError(t, db.Create(&orgdomain.Organization{ID: orgID, Name: name, Slug: name}).Error)
	require.NoError(t, db.Create(&orgdomain.Role{ID: adminRoleID, OrgID: orgID, Name: "admin"}).Error)
	require.NoError(t, db.Create(&orgdomain.Member{ID: snowflake.ID(orgID + 9000), OrgID: orgID, UserID: userID}).Error)
	require.NoError(t, db.Create(&orgdomain.RoleMapping{ID: snowflake.ID(orgID + 9001), RoleID: adminRoleID, UserID: userID}).Error)
}

func TestCanManageRolesScopedToOrg(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	userID := snowflake.ID(100)
	seedOrgWithAdmin(t, db, 1, 11, userID, "acme")

	orgB := &orgdomain.Organization{ID: 2, Name: "globex", Slug: "globex"}
	require.NoError(t, db.Create(orgB).Error)

	orgA, err := repository.Provide().GetOrganizationByID(ctx, db, 1)
	require.NoError(t, err)

	assert.NoError(t, svc.CanManageRoles(ctx, userID, orgA))

	err = svc.CanManageRoles(ctx, userID, orgB)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	assert.Contains(t, err.Error(), "doesn't have permission to manage roles in org globex")
}

func TestGlobalManageCoversEveryOrg(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	userID := snowflake.ID(200)
	org := &orgdomain.Organization{ID: 3, Name: "initech", Slug: "initech"}
	require.NoError(t, db.Create(org).Error)

	require.NoError(t, svc.GrantGlobalManage(userID))

	ok, err := svc.HasManageOrgs(ctx, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Not a member, holds no org role, but global manage wins.
	assert.NoError(t, svc.CanManageRoles(ctx, userID, org))

	canView, err := svc.CanViewOrg(ctx, userID, org.ID)
	require.NoError(t, err)
	assert.True(t, canView)
}

func TestMemberRoleIsReadOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	userID := snowflake.ID(300)
	org := &orgdomain.Organization{ID: 4, Name: "umbrella", Slug: "umbrella"}
	require.NoError(t, db.Create(org).Error)
	require.NoError(t, db.Create(&orgdomain.Role{ID: 41, OrgID: org.ID, Name: "member"}).Error)
	require.NoError(t, db.Create(&orgdomain.Member{ID: 42, OrgID: org.ID, UserID: userID}).Error)
	require.NoError(t, db.Create(&orgdomain.RoleMapping{ID: 43, RoleID: 41, UserID: userID}).Error)

	canView, err := svc.CanViewRoles(ctx, userID, org.ID)
	require.NoError(t, err)
	assert.True(t, canView)

	err = svc.CanManageRoles(ctx, userID, org)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestRevokedRoleLosesAccess(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	userID := snowflake.ID(400)
	seedOrgWithAdmin(t, db, 5, 51, userID, "hooli")

	org, err := repository.Provide().GetOrganizationByID(ctx, db, 5)
	require.NoError(t, err)
	require.NoError(t, svc.CanManageRoles(ctx, userID, org))

	// Drop the admin mapping; the next check must resync and deny.
	require.NoError(t, repository.Provide().RevokeRole(ctx, db, 51, userID))

	err = svc.CanManageRoles(ctx, userID, org)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestCanManageRolesNilOrg(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	err := svc.CanManageRoles(context.Background(), snowflake.ID(1), nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
