package mcp_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
	"github.com/summit/cfo/internal/mcp"
)

func TestClientEvaluateRoundTripsThroughServer(t *testing.T) {
	srv := mcp.NewServer(mcp.AuthConfig{Token: testToken, Secret: testSecret}, func(params mcp.EvaluateParams) (mcp.EvaluateResult, error) {
		require.Len(t, params.Inventory, 1)
		require.Equal(t, "leaf1", params.Inventory[0].Name)
		return mcp.EvaluateResult{RiskLevel: "medium", BlastRadiusScore: 42, RequiresApproval: true, Reasons: []string{"test"}}, nil
	}, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	client := mcp.NewClient(mcp.ClientConfig{URL: ts.URL + "/mcp", Token: testToken, Secret: testSecret})

	reg, err := inventory.New([]domain.Device{{Name: "leaf1", Role: domain.RoleLeaf}})
	require.NoError(t, err)
	plan := domain.ChangePlan{PlanID: "chg-1"}

	assessment, err := client.Evaluate(context.Background(), plan, reg)
	require.NoError(t, err)
	require.EqualValues(t, "medium", assessment.Level)
	require.Equal(t, 42, assessment.BlastRadiusScore)
	require.True(t, assessment.RequiresApproval)
}

func TestClientEvaluateReturnsErrorOnRejectedResponse(t *testing.T) {
	srv := mcp.NewServer(mcp.AuthConfig{Token: testToken, Secret: "different-secret"}, func(mcp.EvaluateParams) (mcp.EvaluateResult, error) {
		return mcp.EvaluateResult{}, nil
	}, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	client := mcp.NewClient(mcp.ClientConfig{URL: ts.URL + "/mcp", Token: testToken, Secret: testSecret})
	reg, err := inventory.New([]domain.Device{{Name: "leaf1", Role: domain.RoleLeaf}})
	require.NoError(t, err)

	_, err = client.Evaluate(context.Background(), domain.ChangePlan{PlanID: "chg-1"}, reg)
	require.Error(t, err, "expected an error when the server's secret does not match the client's")
}

func TestClientEvaluateReturnsErrorOnTransportFailure(t *testing.T) {
	client := mcp.NewClient(mcp.ClientConfig{URL: "http://127.0.0.1:0/mcp", Token: testToken, Secret: testSecret})
	reg, err := inventory.New([]domain.Device{{Name: "leaf1", Role: domain.RoleLeaf}})
	require.NoError(t, err)

	_, err = client.Evaluate(context.Background(), domain.ChangePlan{PlanID: "chg-1"}, reg)
	require.Error(t, err, "expected an error when the endpoint is unreachable")
}
