package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openorgs/orgd/internal/apperr"
	"github.com/openorgs/orgd/internal/bulk"
	roledomain "github.com/openorgs/orgd/internal/role/domain"
)

func TestGrantUserOrgRolesMultiStatus(t *testing.T) {
	roleSvc := &fakeRoleService{
		bulkOutcomes: []bulk.Item[roledomain.RoleRepresentation]{
			{Status: http.StatusCreated, Item: roledomain.RoleRepresentation{Name: "billing"}},
			{Status: http.StatusBadRequest, Error: "Organization acme doesn't contain role ghost", Item: roledomain.RoleRepresentation{Name: "ghost"}},
		},
	}
	srv, auth := newTestServer(t, roleSvc, nil)

	reps := []roledomain.RoleRepresentation{{Name: "billing"}, {Name: "ghost"}}
	resp := doRequest(srv, http.MethodPut, "/users/7/orgs/10/roles", auth, reps)

	require.Equal(t, http.StatusMultiStatus, resp.Code)
	assert.Equal(t, snowflake.ID(7), roleSvc.lastUserID)
	assert.Equal(t, snowflake.ID(10), roleSvc.lastOrgID)

	var outcomes []bulk.Item[roledomain.RoleRepresentation]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &outcomes))
	require.Len(t, outcomes, 2)
	assert.Equal(t, http.StatusCreated, outcomes[0].Status)
	assert.Equal(t, "Organization acme doesn't contain role ghost", outcomes[1].Error)
}

func TestRevokeUserOrgRolesDeniedAbortsBatch(t *testing.T) {
	roleSvc := &fakeRoleService{bulkErr: apperr.NotAuthorizedf("Insufficient permissions")}
	srv, auth := newTestServer(t, roleSvc, nil)

	reps := []roledomain.RoleRepresentation{{Name: "billing"}}
	resp := doRequest(srv, http.MethodPatch, "/users/7/orgs/10/roles", auth, reps)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "Insufficient permissions", payload.Message)
	assert.Equal(t, 1, roleSvc.bulkCalls)
}

func TestGrantRolesInvalidUserParam(t *testing.T) {
	roleSvc := &fakeRoleService{}
	srv, auth := newTestServer(t, roleSvc, nil)

	reps := []roledomain.RoleRepresentation{{Name: "billing"}}
	resp := doRequest(srv, http.MethodPut, "/users/abc/orgs/10/roles", auth, reps)

	require.Equal(t, http.StatusNotFound, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "User abc doesn't exist", payload.Message)
	assert.Zero(t, roleSvc.bulkCalls)
}

func TestListUserOrgRolesNonMember(t *testing.T) {
	roleSvc := &fakeRoleService{err: apperr.NotFoundf("User is not a member of the organization")}
	srv, auth := newTestServer(t, roleSvc, nil)

	resp := doRequest(srv, http.MethodGet, "/users/7/orgs/10/roles", auth, nil)

	require.Equal(t, http.StatusNotFound, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "User is not a member of the organization", payload.Message)
}
