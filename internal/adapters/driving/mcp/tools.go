package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question about upcoming events, in French or English"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation identifier used to resolve follow-ups such as 'cet événement'"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of event chunks to retrieve (default from settings)"`
	TodayOnly bool   `json:"today_only,omitempty" jsonschema:"prefer events taking place today"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Question string         `json:"question"`
	Response string         `json:"response"`
	Context  []string       `json:"context"`
	Mode     string         `json:"mode"`
	Sources  []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput describes one event chunk that grounded the answer.
type SourceOutput struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`
	Dates   string `json:"dates,omitempty"`
	Geo     string `json:"geo,omitempty"`
}

// RebuildInput is the input schema for the rebuild tool.
type RebuildInput struct{}

// RebuildOutput is the output schema for the rebuild tool.
type RebuildOutput struct {
	BuildID    string `json:"build_id"`
	Count      int    `json:"count"`
	Dimensions int    `json:"dimensions"`
	BuiltAt    string `json:"built_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about public events using the indexed agenda",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rebuild",
		Description: "Reload the persisted event index",
	}, s.handleRebuild)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, domain.Question{
		Text:      input.Question,
		SessionID: input.SessionID,
		TopK:      input.TopK,
		TodayOnly: input.TodayOnly,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Question: answer.Question,
		Response: answer.Response,
		Context:  answer.Context,
		Mode:     answer.Mode.String(),
		Sources:  make([]SourceOutput, len(answer.Retrieved)),
	}
	for i := range answer.Retrieved {
		output.Sources[i] = SourceOutput{
			EventID: answer.Retrieved[i].EventID,
			Title:   answer.Retrieved[i].Title,
			Dates:   answer.Retrieved[i].DatesText,
			Geo:     answer.Retrieved[i].GeoText,
		}
	}

	return nil, output, nil
}

// handleRebuild handles the rebuild tool invocation.
func (s *Server) handleRebuild(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RebuildInput,
) (*mcp.CallToolResult, RebuildOutput, error) {
	info, err := s.ports.Ask.Rebuild(ctx)
	if err != nil {
		return nil, RebuildOutput{}, err
	}
	return nil, RebuildOutput{
		BuildID:    info.BuildID,
		Count:      info.Count,
		Dimensions: info.Dimensions,
		BuiltAt:    info.BuiltAt.Format(time.RFC3339),
	}, nil
}
