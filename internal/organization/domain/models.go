// Package domain contains persistence models for the organization layer.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organization represents a tenant.
type Organization struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// Role is a named permission grouping scoped to one organization. The
// name is unique within the organization.
type Role struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_role_name,priority:1" json:"org_id"`
	Name        string       `gorm:"type:text;not null;uniqueIndex:ux_org_role_name,priority:2" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Role) TableName() string { return "organization_roles" }

// Member records that a user belongs to an organization.
type Member struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_member,priority:1" json:"org_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_member,priority:2" json:"user_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "organization_members" }

// RoleMapping records that a user holds a role. Presence is the whole
// relation; there are no per-assignment attributes.
type RoleMapping struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	RoleID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_role_user,priority:1" json:"role_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_role_user,priority:2" json:"user_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (RoleMapping) TableName() string { return "organization_role_mappings" }
