// Package domain defines the role lifecycle and role assignment
// surface: single-item role CRUD, the batch variants behind the 207
// endpoints, and per-user role queries.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openorgs/orgd/internal/bulk"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
)

// DefaultRoles are carried by every organization and can never be
// deleted, regardless of actor permissions.
var DefaultRoles = []string{"admin", "member"}

func IsDefaultRole(name string) bool {
	for _, role := range DefaultRoles {
		if role == name {
			return true
		}
	}
	return false
}

// RoleRepresentation is the wire shape of an organization role. Batch
// outcomes echo it back unchanged for client correlation.
type RoleRepresentation struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

type Service interface {
	ListRoles(ctx context.Context, actorID, orgID snowflake.ID) ([]orgdomain.Role, error)
	GetRole(ctx context.Context, actorID, orgID snowflake.ID, name string) (*orgdomain.Role, error)
	CreateRole(ctx context.Context, actorID, orgID snowflake.ID, rep RoleRepresentation) (*orgdomain.Role, error)
	DeleteRole(ctx context.Context, actorID, orgID snowflake.ID, name string) error

	// CreateRoles and DeleteRoles apply each item independently and
	// report per-item outcomes. The returned error is non-nil only for
	// failures that abort the whole batch, such as a missing
	// organization or a denied actor.
	CreateRoles(ctx context.Context, actorID, orgID snowflake.ID, reps []RoleRepresentation) ([]bulk.Item[RoleRepresentation], error)
	DeleteRoles(ctx context.Context, actorID, orgID snowflake.ID, reps []RoleRepresentation) ([]bulk.Item[RoleRepresentation], error)

	ListUserOrganizations(ctx context.Context, actorID, userID snowflake.ID) ([]orgdomain.Organization, error)
	ListUserRoles(ctx context.Context, actorID, userID, orgID snowflake.ID) ([]orgdomain.Role, error)

	GrantRoles(ctx context.Context, actorID, userID, orgID snowflake.ID, reps []RoleRepresentation) ([]bulk.Item[RoleRepresentation], error)
	RevokeRoles(ctx context.Context, actorID, userID, orgID snowflake.ID, reps []RoleRepresentation) ([]bulk.Item[RoleRepresentation], error)
}
