// Package domain defines the active-organization resolver: reading a
// user's current selection and switching it, with fresh credentials on
// every switch.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
	"github.com/openorgs/orgd/internal/tokens"
)

// SwitchRequest is the wire body of a switch call.
type SwitchRequest struct {
	ID string `json:"id" binding:"required"`
}

type Service interface {
	// GetActive resolves the user's recorded selection. It never falls
	// back to an arbitrary organization when the recorded one is stale.
	GetActive(ctx context.Context, userID snowflake.ID) (*orgdomain.Organization, error)
	// Switch replaces the selection and mints a fresh credential bundle
	// scoped to the new organization.
	Switch(ctx context.Context, userID, targetOrgID snowflake.ID) (*tokens.Bundle, error)
}
