package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleLastContextResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty before any ask", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{}})
		require.NoError(t, err)

		result, err := server.handleLastContextResource(ctx, makeReadResourceRequest(lastContextURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns context texts", func(t *testing.T) {
		mock := &mockAskService{last: []string{"Concert au parc", "Atelier poterie"}}
		server, err := NewServer(&Ports{Ask: mock})
		require.NoError(t, err)

		result, err := server.handleLastContextResource(ctx, makeReadResourceRequest(lastContextURI))

		require.NoError(t, err)
		assert.JSONEq(t, `["Concert au parc", "Atelier poterie"]`, result.Contents[0].Text)
		assert.Equal(t, lastContextURI, result.Contents[0].URI)
	})
}

func TestServer_handleHealthResource(t *testing.T) {
	mock := &mockAskService{health: driving.HealthStatus{
		Ready:    true,
		Snapshot: domain.SnapshotInfo{BuildID: "b1", Count: 2, Dimensions: 3},
	}}
	server, err := NewServer(&Ports{Ask: mock})
	require.NoError(t, err)

	result, err := server.handleHealthResource(context.Background(), makeReadResourceRequest(healthURI))

	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, `"ready": true`)
	assert.Contains(t, result.Contents[0].Text, `"build_id": "b1"`)
}
