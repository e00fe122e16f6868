// Package seed bootstraps a fresh deployment: the default organization
// with its default roles, and optionally an administrator holding the
// realm-wide manage capability.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	identitydomain "github.com/openorgs/orgd/internal/identity/domain"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
	roledomain "github.com/openorgs/orgd/internal/role/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName   = "Main"
	defaultAdminName = "admin"
)

// EnsureDefaultOrg seeds the named organization and its default roles.
// An empty name falls back to "Main". Safe to call on every startup.
func EnsureDefaultOrg(db *gorm.DB, name string) (*orgdomain.Organization, error) {
	if db == nil {
		return nil, errors.New("seed database handle is required")
	}
	if strings.TrimSpace(name) == "" {
		name = defaultOrgName
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	var org *orgdomain.Organization
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err = ensureOrgTx(ctx, tx, node, name)
		if err != nil {
			return err
		}
		return ensureDefaultRolesTx(ctx, tx, node, org.ID)
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// EnsureAdminUser seeds the named user as a member of the organization
// holding its default admin role. The caller is responsible for the
// realm-wide capability grant.
func EnsureAdminUser(db *gorm.DB, org *orgdomain.Organization, username string) (*identitydomain.User, error) {
	if db == nil {
		return nil, errors.New("seed database handle is required")
	}
	if org == nil {
		return nil, errors.New("seed organization is required")
	}
	if strings.TrimSpace(username) == "" {
		username = defaultAdminName
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	var user *identitydomain.User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err = ensureUserTx(ctx, tx, node, username)
		if err != nil {
			return err
		}
		if err := ensureMembershipTx(ctx, tx, node, org.ID, user.ID); err != nil {
			return err
		}
		return ensureRoleMappingTx(ctx, tx, node, org.ID, user.ID, "admin")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func ensureOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) (*orgdomain.Organization, error) {
	orgSlug := slug.Make(name)

	var org orgdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", orgSlug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	org = orgdomain.Organization{
		ID:        node.Generate(),
		Name:      name,
		Slug:      orgSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureDefaultRolesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	for _, name := range roledomain.DefaultRoles {
		var role orgdomain.Role
		err := tx.WithContext(ctx).
			Where("org_id = ? AND name = ?", orgID, name).
			First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		role = orgdomain.Role{
			ID:        node.Generate(),
			OrgID:     orgID,
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.WithContext(ctx).Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, username string) (*identitydomain.User, error) {
	var user identitydomain.User
	err := tx.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user = identitydomain.User{
		ID:        node.Generate(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureMembershipTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID, userID snowflake.ID) error {
	var member orgdomain.Member
	err := tx.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	member = orgdomain.Member{
		ID:        node.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&member).Error
}

func ensureRoleMappingTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID, userID snowflake.ID, roleName string) error {
	var role orgdomain.Role
	if err := tx.WithContext(ctx).
		Where("org_id = ? AND name = ?", orgID, roleName).
		First(&role).Error; err != nil {
		return err
	}

	var mapping orgdomain.RoleMapping
	err := tx.WithContext(ctx).
		Where("role_id = ? AND user_id = ?", role.ID, userID).
		First(&mapping).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	mapping = orgdomain.RoleMapping{
		ID:        node.Generate(),
		RoleID:    role.ID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&mapping).Error
}
