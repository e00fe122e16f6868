package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openorgs/orgd/internal/apperr"
	auditdomain "github.com/openorgs/orgd/internal/audit/domain"
	"github.com/openorgs/orgd/internal/orgcontext"
	"github.com/openorgs/orgd/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	PageToken  string `form:"page_token"`
	PageSize   int    `form:"page_size"`
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	StartAt    string `form:"start_at"`
	EndAt      string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
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

	canView, err := s.authzSvc.CanViewOrg(c.Request.Context(), actorID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !canView {
		AbortWithError(c, apperr.NotAuthorizedf("Insufficient permissions"))
		return
	}

	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, apperr.BadRequestf("invalid query"))
		return
	}

	var startAt *time.Time
	if value := strings.TrimSpace(query.StartAt); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			AbortWithError(c, apperr.BadRequestf("invalid start_at"))
			return
		}
		startAt = &parsed
	}
	var endAt *time.Time
	if value := strings.TrimSpace(query.EndAt); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			AbortWithError(c, apperr.BadRequestf("invalid end_at"))
			return
		}
		endAt = &parsed
	}

	ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
	resp, err := s.auditSvc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{
			PageToken: query.PageToken,
			PageSize:  query.PageSize,
		},
		Action:     query.Action,
		TargetType: query.TargetType,
		TargetID:   query.TargetID,
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
