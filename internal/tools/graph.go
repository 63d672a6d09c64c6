package tools

import (
	"context"

	"github.com/HendryAvila/taskgraph/internal/taskgraph"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── GraphTool ───────────────────────────────────────────────────────────────

// GraphTool handles the graph_get MCP tool.
type GraphTool struct {
	svc *taskgraph.Service
}

// NewGraphTool creates a GraphTool with the given service.
func NewGraphTool(svc *taskgraph.Service) *GraphTool {
	return &GraphTool{svc: svc}
}

// Definition returns the MCP tool definition for graph_get.
func (t *GraphTool) Definition() mcp.Tool {
	return mcp.NewTool("graph_get",
		mcp.WithDescription(
			"Fetch the whole task graph as nodes and edges. "+
				"Nodes carry a placeholder position; layout is the client's job. "+
				"Edges referencing a missing task are omitted.",
		),
	)
}

// Handle processes the graph_get tool call.
func (t *GraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := t.svc.GetGraph(ctx)
	if err != nil {
		return errResult("failed to fetch graph", err), nil
	}
	return jsonResult(view)
}
