package server

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openorgs/orgd/internal/apperr"
	"github.com/openorgs/orgd/internal/bulk"
	roledomain "github.com/openorgs/orgd/internal/role/domain"
)

func (s *Server) ListRoles(c *gin.Context) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}
	orgID, err := parseIDParam(c, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	roles, err := s.roleSvc.ListRoles(c.Request.Context(), actorID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (s *Server) GetRole(c *gin.Context) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}
	orgID, err := parseIDParam(c, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	role, err := s.roleSvc.GetRole(c.Request.Context(), actorID, orgID, c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, role)
}

func (s *Server) CreateRole(c *gin.Context) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}
	orgID, err := parseIDParam(c, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var rep roledomain.RoleRepresentation
	if err := c.ShouldBindJSON(&rep); err != nil {
		AbortWithError(c, apperr.BadRequestf("invalid role representation"))
		return
	}

	role, err := s.roleSvc.CreateRole(c.Request.Context(), actorID, orgID, rep)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Location", c.Request.URL.Path+"/"+role.Name)
	c.JSON(http.StatusCreated, role)
}

func (s *Server) DeleteRole(c *gin.Context) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}
	orgID, err := parseIDParam(c, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.roleSvc.DeleteRole(c.Request.Context(), actorID, orgID, c.Param("name")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CreateRoles(c *gin.Context) {
	s.bulkRoleOp(c, s.roleSvc.CreateRoles)
}

func (s *Server) DeleteRoles(c *gin.Context) {
	s.bulkRoleOp(c, s.roleSvc.DeleteRoles)
}

type bulkRoleFn func(ctx context.Context, actorID, orgID snowflake.ID, reps []roledomain.RoleRepresentation) ([]bulk.Item[roledomain.RoleRepresentation], error)

// bulkRoleOp runs one of the batch role operations and reports the
// per-item outcomes with 207 Multi-Status. A pre-loop failure (missing
// org, denied actor) aborts the whole call instead.
func (s *Server) bulkRoleOp(c *gin.Context, op bulkRoleFn) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
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

	outcomes, err := op(c.Request.Context(), actorID, orgID, reps)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Location", c.Request.URL.Path)
	c.JSON(bulk.StatusMultiStatus, outcomes)
}
