// Package domain models the identity-store collaborator at its
// interface boundary. Users are owned by the host platform; this core
// only reads them and mutates the active-organization attribute.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User mirrors the host identity store's user record.
type User struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Username    string       `gorm:"type:text;not null;uniqueIndex:ux_users_username" json:"username"`
	Email       string       `gorm:"type:text" json:"email"`
	ActiveOrgID *int64       `gorm:"column:active_org_id" json:"active_org_id,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
