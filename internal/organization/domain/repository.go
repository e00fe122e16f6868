package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the role store adapter: the per-organization keyed
// collection of roles, memberships and role assignments. Removal and
// revocation are idempotent; callers must not expect a missing row to
// produce an error.
type Repository interface {
	GetOrganizationByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	ListOrganizationsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Organization, error)

	GetRoleByName(ctx context.Context, db *gorm.DB, orgID snowflake.ID, name string) (*Role, error)
	ListRoles(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Role, error)
	AddRole(ctx context.Context, db *gorm.DB, role *Role) error
	RemoveRole(ctx context.Context, db *gorm.DB, orgID snowflake.ID, name string) error

	HasMembership(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) (bool, error)

	HasRole(ctx context.Context, db *gorm.DB, roleID, userID snowflake.ID) (bool, error)
	GrantRole(ctx context.Context, db *gorm.DB, mapping *RoleMapping) error
	RevokeRole(ctx context.Context, db *gorm.DB, roleID, userID snowflake.ID) error
	ListRolesForUser(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) ([]Role, error)
}
