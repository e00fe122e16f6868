package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the identity-store lookup surface consumed by the core.
type Repository interface {
	GetUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	// SetActiveOrg replaces the user's active-organization attribute.
	// Passing nil clears it.
	SetActiveOrg(ctx context.Context, db *gorm.DB, userID snowflake.ID, orgID *int64) error
}
