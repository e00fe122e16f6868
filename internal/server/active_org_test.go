package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activedomain "github.com/openorgs/orgd/internal/activeorg/domain"
	"github.com/openorgs/orgd/internal/apperr"
	orgdomain "github.com/openorgs/orgd/internal/organization/domain"
	"github.com/openorgs/orgd/internal/tokens"
)

type fakeActiveService struct {
	org    *orgdomain.Organization
	bundle *tokens.Bundle
	err    error

	lastUserID   snowflake.ID
	lastTargetID snowflake.ID
	switchCalls  int
}

func (f *fakeActiveService) GetActive(ctx context.Context, userID snowflake.ID) (*orgdomain.Organization, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.org, nil
}

func (f *fakeActiveService) Switch(ctx context.Context, userID, targetOrgID snowflake.ID) (*tokens.Bundle, error) {
	f.switchCalls++
	f.lastUserID = userID
	f.lastTargetID = targetOrgID
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle, nil
}

func TestGetActiveOrganizationHandler(t *testing.T) {
	activeSvc := &fakeActiveService{
		org: &orgdomain.Organization{ID: snowflake.ID(10), Name: "acme", Slug: "acme"},
	}
	srv, auth := newTestServer(t, &fakeRoleService{}, activeSvc)

	resp := doRequest(srv, http.MethodGet, "/users/active-organization", auth, nil)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, snowflake.ID(1), activeSvc.lastUserID)

	var org orgdomain.Organization
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &org))
	assert.Equal(t, "acme", org.Name)
}

func TestGetActiveOrganizationNoOrgs(t *testing.T) {
	activeSvc := &fakeActiveService{err: apperr.NotFoundf("No available organizations.")}
	srv, auth := newTestServer(t, &fakeRoleService{}, activeSvc)

	resp := doRequest(srv, http.MethodGet, "/users/active-organization", auth, nil)

	require.Equal(t, http.StatusNotFound, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "No available organizations.", payload.Message)
}

func TestGetActiveOrganizationStaleSelection(t *testing.T) {
	activeSvc := &fakeActiveService{err: apperr.NotAuthorizedf("Action not allowed.")}
	srv, auth := newTestServer(t, &fakeRoleService{}, activeSvc)

	resp := doRequest(srv, http.MethodGet, "/users/active-organization", auth, nil)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "Action not allowed.", payload.Message)
}

func TestSwitchActiveOrganizationHandler(t *testing.T) {
	activeSvc := &fakeActiveService{
		bundle: &tokens.Bundle{AccessToken: "fresh-access", RefreshToken: "fresh-refresh", TokenType: "Bearer"},
	}
	srv, auth := newTestServer(t, &fakeRoleService{}, activeSvc)

	resp := doRequest(srv, http.MethodPut, "/users/switch-organization", auth, activedomain.SwitchRequest{ID: "20"})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, snowflake.ID(20), activeSvc.lastTargetID)

	var bundle tokens.Bundle
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bundle))
	assert.Equal(t, "fresh-access", bundle.AccessToken)
	assert.Equal(t, "Bearer", bundle.TokenType)
}

func TestSwitchActiveOrganizationMalformedID(t *testing.T) {
	activeSvc := &fakeActiveService{}
	srv, auth := newTestServer(t, &fakeRoleService{}, activeSvc)

	resp := doRequest(srv, http.MethodPut, "/users/switch-organization", auth, activedomain.SwitchRequest{ID: "ghost"})

	require.Equal(t, http.StatusNotFound, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "ghost not found", payload.Message)
	assert.Zero(t, activeSvc.switchCalls)
}

func TestSwitchActiveOrganizationNonMember(t *testing.T) {
	activeSvc := &fakeActiveService{err: apperr.NotAuthorizedf("Not a member of this organization.")}
	srv, auth := newTestServer(t, &fakeRoleService{}, activeSvc)

	resp := doRequest(srv, http.MethodPut, "/users/switch-organization", auth, activedomain.SwitchRequest{ID: "20"})

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	payload := decodeErrorBody(t, resp)
	assert.Equal(t, "Not a member of this organization.", payload.Message)
}
