package authz

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/openorgs/orgd/internal/apperr"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	roleGlobalAdmin = "role:realm_admin"
	rolePrefix      = "role:"
	subjectPrefix   = "user:"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	OrgRepo  orgdomain.Repository
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	orgRepo  orgdomain.Repository
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authz.service"),
		enforcer: p.Enforcer,
		orgRepo:  p.OrgRepo,
	}
}

func (s *ServiceImpl) HasManageOrgs(ctx context.Context, userID snowflake.ID) (bool, error) {
	_ = ctx
	return s.enforcer.Enforce(subject(userID), GlobalDomain, ObjectOrganizations, ActionManage)
}

func (s *ServiceImpl) HasOrgManageRoles(ctx context.Context, userID, orgID snowflake.ID) (bool, error) {
	return s.enforceOrg(ctx, userID, orgID, ObjectRoles, ActionManage)
}

func (s *ServiceImpl) CanManageRoles(ctx context.Context, userID snowflake.ID, org *orgdomain.Organization) error {
	if org == nil {
		return apperr.NotFoundf("organization not found")
	}

	global, err := s.HasManageOrgs(ctx, userID)
	if err != nil {
		return err
	}
	if global {
		return nil
	}

	scoped, err := s.enforceOrg(ctx, userID, org.ID, ObjectRoles, ActionManage)
	if err != nil {
		return err
	}
	if !scoped {
		return apperr.NotAuthorizedf(
			"User %s doesn't have permission to manage roles in org %s",
			userID.String(), org.Name)
	}
	return nil
}

func (s *ServiceImpl) CanViewOrg(ctx context.Context, userID, orgID snowflake.ID) (bool, error) {
	global, err := s.HasManageOrgs(ctx, userID)
	if err != nil {
		return false, err
	}
	if global {
		return true, nil
	}
	return s.enforceOrg(ctx, userID, orgID, ObjectOrganization, ActionView)
}

func (s *ServiceImpl) CanViewRoles(ctx context.Context, userID, orgID snowflake.ID) (bool, error) {
	global, err := s.HasManageOrgs(ctx, userID)
	if err != nil {
		return false, err
	}
	if global {
		return true, nil
	}
	return s.enforceOrg(ctx, userID, orgID, ObjectRoles, ActionView)
}

func (s *ServiceImpl) GrantGlobalManage(userID snowflake.ID) error {
	_, err := s.enforcer.AddGroupingPolicy(subject(userID), roleGlobalAdmin, GlobalDomain)
	return err
}

// enforceOrg syncs the user's held org roles into casbin groupings and
// evaluates the capability inside the org domain.
func (s *ServiceImpl) enforceOrg(ctx context.Context, userID, orgID snowflake.ID, object, action string) (bool, error) {
	domain := orgCasbinDomain(orgID)

	held, err := s.orgRepo.ListRolesForUser(ctx, s.db, orgID, userID)
	if err != nil {
		return false, err
	}
	roleNames := make([]string, 0, len(held))
	for _, role := range held {
		roleNames = append(roleNames, rolePrefix+strings.ToLower(role.Name))
	}

	if err := s.syncGroupings(subject(userID), domain, roleNames); err != nil {
		return false, err
	}

	return s.enforcer.Enforce(subject(userID), domain, object, action)
}

// syncGroupings replaces the subject's groupings inside one org domain
// with the currently held role set.
func (s *ServiceImpl) syncGroupings(subject, domain string, roleNames []string) error {
	current := map[string]bool{}
	for _, name := range roleNames {
		current[name] = true
	}

	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, rule := range existing {
		if len(rule) < 3 {
			continue
		}
		if !current[rule[1]] {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
			continue
		}
		seen[rule[1]] = true
	}

	for _, name := range roleNames {
		if seen[name] {
			continue
		}
		if _, err := s.enforcer.AddGroupingPolicy(subject, name, domain); err != nil {
			return err
		}
	}
	return nil
}

func subject(userID snowflake.ID) string {
	return subjectPrefix + userID.String()
}

func orgCasbinDomain(orgID snowflake.ID) string {
	return fmt.Sprintf("org:%s", orgID.String())
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Realm administrators manage every organization.
		{roleGlobalAdmin, ObjectOrganizations, ActionManage},
		{roleGlobalAdmin, ObjectOrganizations, ActionView},

		// Default org role "admin" delegates role management inside its org.
		{"role:admin", ObjectOrganization, ActionView},
		{"role:admin", ObjectRoles, ActionView},
		{"role:admin", ObjectRoles, ActionManage},

		// Default org role "member" is read-only.
		{"role:member", ObjectOrganization, ActionView},
		{"role:member", ObjectRoles, ActionView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
