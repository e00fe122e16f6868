package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openorgs/orgd/internal/apperr"
	"github.com/openorgs/orgd/internal/bulk"
	roledomain "github.com/openorgs/orgd/internal/role/domain"
)

func (s *Server) ListUserOrgs(c *gin.Context) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}
	userID, err := s.parseUserParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orgs, err := s.roleSvc.ListUserOrganizations(c.Request.Context(), actorID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orgs": orgs})
}

func (s *Server) ListUserOrgRoles(c *gin.Context) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}
	userID, err := s.parseUserParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	orgID, err := parseIDParam(c, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	roles, err := s.roleSvc.ListUserRoles(c.Request.Context(), actorID, userID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (s *Server) GrantUserOrgRoles(c *gin.Context) {
	s.bulkAssignmentOp(c, s.roleSvc.GrantRoles)
}

func (s *Server) RevokeUserOrgRoles(c *gin.Context) {
	s.bulkAssignmentOp(c, s.roleSvc.RevokeRoles)
}

type bulkAssignmentFn func(ctx context.Context, actorID, userID, orgID snowflake.ID, reps []roledomain.RoleRepresentation) ([]bulk.Item[roledomain.RoleRepresentation], error)

func (s *Server) bulkAssignmentOp(c *gin.Context, op bulkAssignmentFn) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}
	userID, err := s.parseUserParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	orgID, err := parseIDParam(c, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var reps []roledomain.RoleRepresentation
	if err := c.ShouldBindJSON(&reps); err != nil {
		AbortWithError(c, apperr.BadRequestf("invalid role representations"))
		return
	}

	outcomes, err := op(c.Request.Context(), actorID, userID, orgID, reps)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Location", c.Request.URL.Path)
	c.JSON(bulk.StatusMultiStatus, outcomes)
}

func (s *Server) parseUserParam(c *gin.Context) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param("userId"))
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, apperr.NotFoundf("User %s doesn't exist", raw)
	}
	return id, nil
}
