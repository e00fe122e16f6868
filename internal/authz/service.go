// Package authz is the authorization guard for the organization layer.
// It composes a realm-wide "manage all organizations" capability with
// per-organization capabilities derived from the default roles a user
// holds in that organization.
package authz

import (
	"context"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
)

const (
	ObjectOrganizations = "organizations"
	ObjectOrganization  = "organization"
	ObjectRoles         = "roles"

	ActionManage = "manage"
	ActionView   = "view"
)

// GlobalDomain scopes capabilities that apply to every organization.
const GlobalDomain = "*"

// Service decides what an actor may do to a target organization. All
// checks are pure reads; nothing here mutates domain state.
type Service interface {
	// HasManageOrgs reports the realm-wide manage capability.
	HasManageOrgs(ctx context.Context, userID snowflake.ID) (bool, error)
	// HasOrgManageRoles reports the org-scoped roles:manage capability
	// on its own, without the global fallback.
	HasOrgManageRoles(ctx context.Context, userID, orgID snowflake.ID) (bool, error)
	// CanManageRoles allows iff the actor holds the global manage
	// capability or the org-scoped roles:manage capability.
	CanManageRoles(ctx context.Context, userID snowflake.ID, org *orgdomain.Organization) error
	// CanViewOrg reports whether the actor may see the organization at all.
	CanViewOrg(ctx context.Context, userID, orgID snowflake.ID) (bool, error)
	// CanViewRoles reports whether the actor may list roles in the organization.
	CanViewRoles(ctx context.Context, userID, orgID snowflake.ID) (bool, error)

	// GrantGlobalManage marks a user as a realm administrator. Used by
	// bootstrap seeding.
	GrantGlobalManage(userID snowflake.ID) error
}
