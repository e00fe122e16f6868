package service

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/openorgs/orgd/internal/apperr"
	auditdomain "github.com/openorgs/orgd/internal/audit/domain"
	"github.com/openorgs/orgd/internal/authz"
	"github.com/openorgs/orgd/internal/bulk"
	"github.com/openorgs/orgd/internal/clock"
	identitydomain "github.com/openorgs/orgd/internal/identity/domain"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
	roledomain "github.com/openorgs/orgd/internal/role/domain"
	"github.com/openorgs/orgd/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	OrgRepo      orgdomain.Repository
	IdentityRepo identitydomain.Repository
	Authz        authz.Service
	AuditSvc     auditdomain.Service
}

type ServiceImpl struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	orgRepo      orgdomain.Repository
	identityRepo identitydomain.Repository
	authz        authz.Service
	auditSvc     auditdomain.Service
}

func NewService(p Params) roledomain.Service {
	return &ServiceImpl{
		db:           p.DB,
		log:          p.Log.Named("role.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		orgRepo:      p.OrgRepo,
		identityRepo: p.IdentityRepo,
		authz:        p.Authz,
		auditSvc:     p.AuditSvc,
	}
}

func (s *ServiceImpl) ListRoles(ctx context.Context, actorID, orgID snowflake.ID) ([]orgdomain.Role, error) {
	org, err := s.requireOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, actorID, org.ID); err != nil {
		return nil, err
	}
	return s.orgRepo.ListRoles(ctx, s.db, org.ID)
}

func (s *ServiceImpl) GetRole(ctx context.Context, actorID, orgID snowflake.ID, name string) (*orgdomain.Role, error) {
	org, err := s.requireOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, actorID, org.ID); err != nil {
		return nil, err
	}
	role, err := s.orgRepo.GetRoleByName(ctx, s.db, org.ID, name)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperr.NotFoundf("Organization %s doesn't contain role %s", org.Name, name)
	}
	return role, nil
}

func (s *ServiceImpl) CreateRole(ctx context.Context, actorID, orgID snowflake.ID, rep roledomain.RoleRepresentation) (*orgdomain.Role, error) {
	org, err := s.requireOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManageRoles(ctx, actorID, org); err != nil {
		return nil, err
	}
	return s.createRole(ctx, actorID, org, rep)
}

func (s *ServiceImpl) DeleteRole(ctx context.Context, actorID, orgID snowflake.ID, name string) error {
	org, err := s.requireOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if err := s.authz.CanManageRoles(ctx, actorID, org); err != nil {
		return err
	}
	return s.deleteRole(ctx, actorID, org, name)
}

func (s *ServiceImpl) CreateRoles(ctx context.Context, actorID, orgID snowflake.ID, reps []roledomain.RoleRepresentation) ([]bulk.Item[roledomain.RoleRepresentation], error) {
	org, err := s.requireOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManageRoles(ctx, actorID, org); err != nil {
		return nil, err
	}
	outcomes := bulk.Apply(reps, http.StatusCreated, func(rep roledomain.RoleRepresentation) error {
		_, err := s.createRole(ctx, actorID, org, rep)
		return err
	})
	return outcomes, nil
}

func (s *ServiceImpl) DeleteRoles(ctx context.Context, actorID, orgID snowflake.ID, reps []roledomain.RoleRepresentation) ([]bulk.Item[roledomain.RoleRepresentation], error) {
	org, err := s.requireOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManageRoles(ctx, actorID, org); err != nil {
		return nil, err
	}
	outcomes := bulk.Apply(reps, http.StatusNoContent, func(rep roledomain.RoleRepresentation) error {
		return s.deleteRole(ctx, actorID, org, rep.Name)
	})
	return outcomes, nil
}

func (s *ServiceImpl) ListUserOrganizations(ctx context.Context, actorID, userID snowflake.ID) ([]orgdomain.Organization, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	orgs, err := s.orgRepo.ListOrganizationsByUser(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}
	visible := make([]orgdomain.Organization, 0, len(orgs))
	for _, org := range orgs {
		ok, err := s.authz.CanViewOrg(ctx, actorID, org.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, org)
		}
	}
	return visible, nil
}

// ListUserRoles returns only the roles the user actually holds in the
// organization, not the organization's full role set.
func (s *ServiceImpl) ListUserRoles(ctx context.Context, actorID, userID, orgID snowflake.ID) ([]orgdomain.Role, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	org, err := s.requireOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	canView, err := s.authz.CanViewRoles(ctx, actorID, org.ID)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, apperr.NotAuthorizedf("Insufficient permissions")
	}

	member, err := s.orgRepo.HasMembership(ctx, s.db, org.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.NotFoundf("User is not a member of the organization")
	}

	return s.orgRepo.ListRolesForUser(ctx, s.db, org.ID, user.ID)
}

func (s *ServiceImpl) GrantRoles(ctx context.Context, actorID, userID, orgID snowflake.ID, reps []roledomain.RoleRepresentation) ([]bulk.Item[roledomain.RoleRepresentation], error) {
	user, org, err := s.canManageAssignment(ctx, actorID, userID, orgID)
	if err != nil {
		return nil, err
	}
	outcomes := bulk.Apply(reps, http.StatusCreated, func(rep roledomain.RoleRepresentation) error {
		return s.grantRole(ctx, actorID, org, user, rep.Name)
	})
	return outcomes, nil
}

func (s *ServiceImpl) RevokeRoles(ctx context.Context, actorID, userID, orgID snowflake.ID, reps []roledomain.RoleRepresentation) ([]bulk.Item[roledomain.RoleRepresentation], error) {
	user, org, err := s.canManageAssignment(ctx, actorID, userID, orgID)
	if err != nil {
		return nil, err
	}
	outcomes := bulk.Apply(reps, http.StatusNoContent, func(rep roledomain.RoleRepresentation) error {
		return s.revokeRole(ctx, actorID, org, user, rep.Name)
	})
	return outcomes, nil
}

func (s *ServiceImpl) createRole(ctx context.Context, actorID snowflake.ID, org *orgdomain.Organization, rep roledomain.RoleRepresentation) (*orgdomain.Role, error) {
	existing, err := s.orgRepo.GetRoleByName(ctx, s.db, org.ID, rep.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Debug("duplicate role", zap.String("name", rep.Name))
		return nil, apperr.Conflictf("Role %s already exists", rep.Name)
	}

	role := &orgdomain.Role{
		ID:          s.genID.Generate(),
		OrgID:       org.ID,
		Name:        rep.Name,
		Description: rep.Description,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.orgRepo.AddRole(ctx, s.db, role); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, apperr.Conflictf("Role %s already exists", rep.Name)
		}
		return nil, err
	}

	s.audit(ctx, actorID, org.ID, auditdomain.ActionRoleCreate, auditdomain.TargetTypeRole, role.Name, map[string]any{
		"id":          role.ID.String(),
		"name":        role.Name,
		"description": role.Description,
	})
	return role, nil
}

// deleteRole removes the named role unconditionally once the
// default-role guard passes. Removing an absent role is a no-op
// success; the audit entry is written either way.
func (s *ServiceImpl) deleteRole(ctx context.Context, actorID snowflake.ID, org *orgdomain.Organization, name string) error {
	if roledomain.IsDefaultRole(name) {
		return apperr.BadRequestf("Default organization role %s cannot be deleted.", name)
	}

	if err := s.orgRepo.RemoveRole(ctx, s.db, org.ID, name); err != nil {
		return err
	}

	s.audit(ctx, actorID, org.ID, auditdomain.ActionRoleDelete, auditdomain.TargetTypeRole, name, nil)
	return nil
}

func (s *ServiceImpl) grantRole(ctx context.Context, actorID snowflake.ID, org *orgdomain.Organization, user *identitydomain.User, name string) error {
	role, err := s.orgRepo.GetRoleByName(ctx, s.db, org.ID, name)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFoundf("Organization %s doesn't contain role %s", org.Name, name)
	}

	held, err := s.orgRepo.HasRole(ctx, s.db, role.ID, user.ID)
	if err != nil {
		return err
	}
	if held {
		// Idempotent grant: already held, no new audit event.
		return nil
	}

	mapping := &orgdomain.RoleMapping{
		ID:        s.genID.Generate(),
		RoleID:    role.ID,
		UserID:    user.ID,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.orgRepo.GrantRole(ctx, s.db, mapping); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		return err
	}

	s.audit(ctx, actorID, org.ID, auditdomain.ActionRoleGrant, auditdomain.TargetTypeRoleMapping, user.ID.String(), map[string]any{
		"role": role.Name,
	})
	return nil
}

func (s *ServiceImpl) revokeRole(ctx context.Context, actorID snowflake.ID, org *orgdomain.Organization, user *identitydomain.User, name string) error {
	role, err := s.orgRepo.GetRoleByName(ctx, s.db, org.ID, name)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFoundf("Organization %s doesn't contain role %s", org.Name, name)
	}

	held, err := s.orgRepo.HasRole(ctx, s.db, role.ID, user.ID)
	if err != nil {
		return err
	}
	if !held {
		// Idempotent revoke.
		return nil
	}

	if err := s.orgRepo.RevokeRole(ctx, s.db, role.ID, user.ID); err != nil {
		return err
	}

	s.audit(ctx, actorID, org.ID, auditdomain.ActionRoleRevoke, auditdomain.TargetTypeRoleMapping, user.ID.String(), map[string]any{
		"role": role.Name,
	})
	return nil
}

// canManageAssignment gates grant/revoke calls: the target user must
// exist, the organization must exist, the user must already be a
// member, and only then is the actor's permission evaluated. A failure
// here aborts the whole batch before any item runs.
func (s *ServiceImpl) canManageAssignment(ctx context.Context, actorID, userID, orgID snowflake.ID) (*identitydomain.User, *orgdomain.Organization, error) {
	user, err := s.identityRepo.GetUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, apperr.NotFoundf("User %s doesn't exist", userID.String())
	}

	org, err := s.orgRepo.GetOrganizationByID(ctx, s.db, orgID)
	if err != nil {
		return nil, nil, err
	}
	if org == nil {
		return nil, nil, apperr.NotFoundf("Organization %s doesn't exist", orgID.String())
	}

	member, err := s.orgRepo.HasMembership(ctx, s.db, org.ID, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if !member {
		return nil, nil, apperr.BadRequestf("User %s must be a member of %s to be granted roles.", userID.String(), org.Name)
	}

	global, err := s.authz.HasManageOrgs(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !global {
		scoped, err := s.authz.HasOrgManageRoles(ctx, actorID, org.ID)
		if err != nil {
			return nil, nil, err
		}
		if !scoped {
			return nil, nil, apperr.NotAuthorizedf("Insufficient permissions")
		}
	}
	return user, org, nil
}

func (s *ServiceImpl) requireOrg(ctx context.Context, orgID snowflake.ID) (*orgdomain.Organization, error) {
	org, err := s.orgRepo.GetOrganizationByID(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.NotFoundf("Organization %s doesn't exist", orgID.String())
	}
	return org, nil
}

func (s *ServiceImpl) requireUser(ctx context.Context, userID snowflake.ID) (*identitydomain.User, error) {
	user, err := s.identityRepo.GetUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("User %s doesn't exist", userID.String())
	}
	return user, nil
}

func (s *ServiceImpl) canView(ctx context.Context, actorID, orgID snowflake.ID) error {
	ok, err := s.authz.CanViewRoles(ctx, actorID, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotAuthorizedf("Insufficient permissions")
	}
	return nil
}

func (s *ServiceImpl) audit(ctx context.Context, actorID snowflake.ID, orgID snowflake.ID, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	actor := actorID.String()
	if err := s.auditSvc.AuditLog(ctx, &orgID, "user", &actor, action, targetType, &targetID, metadata); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}
