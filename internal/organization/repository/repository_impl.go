package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/openorgs/orgd/internal/organization/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) GetOrganizationByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repo) ListOrganizationsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT o.id, o.name, o.slug, o.created_at, o.updated_at
		 FROM organizations o
		 JOIN organization_members m ON m.org_id = o.id
		 WHERE m.user_id = ?
		 ORDER BY o.created_at, o.id`,
		userID,
	).Scan(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repo) GetRoleByName(ctx context.Context, db *gorm.DB, orgID snowflake.ID, name string) (*domain.Role, error) {
	var role domain.Role
	err := db.WithContext(ctx).
		Where("org_id = ? AND name = ?", orgID, name).
		First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repo) ListRoles(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Role, error) {
	var roles []domain.Role
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at, id").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *repo) AddRole(ctx context.Context, db *gorm.DB, role *domain.Role) error {
	return db.WithContext(ctx).Create(role).Error
}

// RemoveRole deletes the role and its assignments. Removing a role that
// does not exist is a no-op.
func (r *repo) RemoveRole(ctx context.Context, db *gorm.DB, orgID snowflake.ID, name string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM organization_role_mappings
			 WHERE role_id IN (SELECT id FROM organization_roles WHERE org_id = ? AND name = ?)`,
			orgID, name,
		).Error; err != nil {
			return err
		}
		return tx.Exec(
			`DELETE FROM organization_roles WHERE org_id = ? AND name = ?`,
			orgID, name,
		).Error
	})
}

func (r *repo) HasMembership(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) HasRole(ctx context.Context, db *gorm.DB, roleID, userID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.RoleMapping{}).
		Where("role_id = ? AND user_id = ?", roleID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) GrantRole(ctx context.Context, db *gorm.DB, mapping *domain.RoleMapping) error {
	return db.WithContext(ctx).Create(mapping).Error
}

// RevokeRole is idempotent: revoking an unheld role deletes nothing.
func (r *repo) RevokeRole(ctx context.Context, db *gorm.DB, roleID, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM organization_role_mappings WHERE role_id = ? AND user_id = ?`,
		roleID, userID,
	).Error
}

func (r *repo) ListRolesForUser(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) ([]domain.Role, error) {
	var roles []domain.Role
	err := db.WithContext(ctx).Raw(
		`SELECT r.id, r.org_id, r.name, r.description, r.created_at
		 FROM organization_roles r
		 JOIN organization_role_mappings m ON m.role_id = r.id
		 WHERE r.org_id = ? AND m.user_id = ?
		 ORDER BY r.created_at, r.id`,
		orgID, userID,
	).Scan(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}
