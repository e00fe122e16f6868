package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	activedomain "github.com/openorgs/orgd/internal/activeorg/domain"
	"github.com/openorgs/orgd/internal/apperr"
	auditdomain "github.com/openorgs/orgd/internal/audit/domain"
	identitydomain "github.com/openorgs/orgd/internal/identity/domain"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
	"github.com/openorgs/orgd/internal/tokens"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	OrgRepo      orgdomain.Repository
	IdentityRepo identitydomain.Repository
	Tokens       *tokens.Manager
	AuditSvc     auditdomain.Service
}

type ServiceImpl struct {
	db           *gorm.DB
	log          *zap.Logger
	orgRepo      orgdomain.Repository
	identityRepo identitydomain.Repository
	tokens       *tokens.Manager
	auditSvc     auditdomain.Service
}

func NewService(p Params) activedomain.Service {
	return &ServiceImpl{
		db:           p.DB,
		log:          p.Log.Named("activeorg.service"),
		orgRepo:      p.OrgRepo,
		identityRepo: p.IdentityRepo,
		tokens:       p.Tokens,
		auditSvc:     p.AuditSvc,
	}
}

func (s *ServiceImpl) GetActive(ctx context.Context, userID snowflake.ID) (*orgdomain.Organization, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	orgs, err := s.orgRepo.ListOrganizationsByUser(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, apperr.NotFoundf("No available organizations.")
	}

	if user.ActiveOrgID == nil {
		return nil, apperr.NotAuthorizedf("Action not allowed.")
	}
	for i := range orgs {
		if int64(orgs[i].ID) == *user.ActiveOrgID {
			return &orgs[i], nil
		}
	}
	// Recorded attribute points at an organization the user left.
	return nil, apperr.NotAuthorizedf("Action not allowed.")
}

func (s *ServiceImpl) Switch(ctx context.Context, userID, targetOrgID snowflake.ID) (*tokens.Bundle, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	org, err := s.orgRepo.GetOrganizationByID(ctx, s.db, targetOrgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.NotFoundf("%s not found", targetOrgID.String())
	}

	member, err := s.orgRepo.HasMembership(ctx, s.db, org.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.NotAuthorizedf("Not a member of this organization.")
	}

	// Full replace: exactly one active organization at a time.
	newActive := int64(org.ID)
	if err := s.identityRepo.SetActiveOrg(ctx, s.db, user.ID, &newActive); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		actor := user.ID.String()
		target := org.ID.String()
		if err := s.auditSvc.AuditLog(ctx, &org.ID, "user", &actor, auditdomain.ActionSwitchOrg, auditdomain.TargetTypeUser, &target, nil); err != nil {
			s.log.Warn("audit write failed", zap.Error(err))
		}
	}

	return s.tokens.Issue(user.ID, &org.ID)
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
