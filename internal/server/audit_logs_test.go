package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "github.com/openorgs/orgd/internal/audit/domain"
	"github.com/openorgs/orgd/internal/orgcontext"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
)

type fakeAuthzService struct {
	canView bool

	lastUserID snowflake.ID
	lastOrgID  snowflake.ID
}

func (f *fakeAuthzService) HasManageOrgs(ctx context.Context, userID snowflake.ID) (bool, error) {
	return false, nil
}

func (f *fakeAuthzService) HasOrgManageRoles(ctx context.Context, userID, orgID snowflake.ID) (bool, error) {
	return false, nil
}

func (f *fakeAuthzService) CanManageRoles(ctx context.Context, userID snowflake.ID, org *orgdomain.Organization) error {
	return nil
}

func (f *fakeAuthzService) CanViewOrg(ctx context.Context, userID, orgID snowflake.ID) (bool, error) {
	f.lastUserID = userID
	f.lastOrgID = orgID
	return f.canView, nil
}

func (f *fakeAuthzService) CanViewRoles(ctx context.Context, userID, orgID snowflake.ID) (bool, error) {
	return f.canView, nil
}

func (f *fakeAuthzService) GrantGlobalManage(userID snowflake.ID) error {
	return nil
}

type fakeAuditService struct {
	resp auditdomain.ListAuditLogResponse
	err  error

	lastReq   auditdomain.ListAuditLogRequest
	lastOrgID snowflake.ID
}

func (f *fakeAuditService) AuditLog(ctx context.Context, orgID *snowflake.ID, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	return nil
}

func (f *fakeAuditService) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	f.lastReq = req
	if orgID, ok := orgcontext.OrgIDFromContext(ctx); ok {
		f.lastOrgID = orgID
	}
	return f.resp, f.err
}

func TestListAuditLogsHandler(t *testing.T) {
	authzSvc := &fakeAuthzService{canView: true}
	auditSvc := &fakeAuditService{
		resp: auditdomain.ListAuditLogResponse{
			AuditLogs: []auditdomain.AuditLog{{ID: snowflake.ID(1), Action: auditdomain.ActionRoleCreate}},
		},
	}
	srv, auth := newTestServer(t, &fakeRoleService{}, nil)
	srv.authzSvc = authzSvc
	srv.auditSvc = auditSvc

	resp := doRequest(srv, http.MethodGet, "/orgs/10/audit-logs?action=organization.role.create&page_size=25", auth, nil)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, snowflake.ID(10), authzSvc.lastOrgID)
	assert.Equal(t, snowflake.ID(10), auditSvc.lastOrgID)
	assert.Equal(t, auditdomain.ActionRoleCreate, auditSvc.lastReq.Action)
	assert.Equal(t, 25, auditSvc.lastReq.PageSize)

	var body auditdomain.ListAuditLogResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.AuditLogs, 1)
	assert.Equal(t, auditdomain.ActionRoleCreate, body.AuditLogs[0].Action)
}

func TestListAuditLogsDenied(t *testing.T) {
	srv, auth := newTestServer(t, &fakeRoleService{}, nil)
	srv.authzSvc = &fakeAuthzService{canView: false}
	srv.auditSvc = &fakeAuditService{}

	resp := doRequest(srv, http.MethodGet, "/orgs/10/audit-logs", auth, nil)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "Insufficient permissions", payload.Message)
}

func TestListAuditLogsBadTimeRange(t *testing.T) {
	srv, auth := newTestServer(t, &fakeRoleService{}, nil)
	srv.authzSvc = &fakeAuthzService{canView: true}
	srv.auditSvc = &fakeAuditService{}

	resp := doRequest(srv, http.MethodGet, "/orgs/10/audit-logs?start_at=yesterday", auth, nil)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "invalid start_at", payload.Message)
}
