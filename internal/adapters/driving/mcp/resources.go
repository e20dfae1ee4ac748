package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for agenda resources.
	uriScheme = "agenda://"

	lastContextURI = uriScheme + "context/last"
	healthURI      = uriScheme + "health"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         lastContextURI,
		Name:        "last-context",
		Description: "Event texts shown to the model for the most recent question",
		MIMEType:    "application/json",
	}, s.handleLastContextResource)

	s.server.AddResource(&mcp.Resource{
		URI:         healthURI,
		Name:        "health",
		Description: "Serving state and loaded index snapshot",
		MIMEType:    "application/json",
	}, s.handleHealthResource)
}

// handleLastContextResource returns the audit trail of the last ask.
func (s *Server) handleLastContextResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	contexts := s.ports.Ask.LastContext()
	if contexts == nil {
		contexts = []string{}
	}
	return jsonResource(req.Params.URI, contexts)
}

// handleHealthResource returns the serving state.
func (s *Server) handleHealthResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Ask.Health(ctx))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
