package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	activedomain "github.com/openorgs/orgd/internal/activeorg/domain"
	"github.com/openorgs/orgd/internal/apperr"
)

func (s *Server) GetActiveOrganization(c *gin.Context) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}

	org, err := s.activeSvc.GetActive(c.Request.Context(), actorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

func (s *Server) SwitchActiveOrganization(c *gin.Context) {
	actorID, ok := s.actor(c)
	if !ok {
		AbortWithError(c, apperr.NotAuthorizedf("unauthorized"))
		return
	}

	var body activedomain.SwitchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, apperr.BadRequestf("invalid switch request"))
		return
	}

	targetID, err := snowflake.ParseString(body.ID)
	if err != nil || targetID == 0 {
		AbortWithError(c, apperr.NotFoundf("%s not found", body.ID))
		return
	}

	bundle, err := s.activeSvc.Switch(c.Request.Context(), actorID, targetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}
