package tools

import (
	"context"

	"github.com/HendryAvila/taskgraph/internal/taskgraph"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── RelateTool ──────────────────────────────────────────────────────────────

// RelateTool handles the task_relate MCP tool.
type RelateTool struct {
	svc *taskgraph.Service
}

// NewRelateTool creates a RelateTool with the given service.
func NewRelateTool(svc *taskgraph.Service) *RelateTool {
	return &RelateTool{svc: svc}
}

// Definition returns the MCP tool definition for task_relate.
func (t *RelateTool) Definition() mcp.Tool {
	return mcp.NewTool("task_relate",
		mcp.WithDescription(
			"Create a typed relationship between two existing tasks. "+
				"Types: DEPENDS_ON, RELATED_TO, SUBTASK_OF. "+
				"Duplicate edges and self-loops are allowed.",
		),
		mcp.WithString("source_id",
			mcp.Required(),
			mcp.Description("Source task ID"),
		),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("Target task ID"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Relationship type: DEPENDS_ON, RELATED_TO or SUBTASK_OF"),
		),
		mcp.WithNumber("weight",
			mcp.Description("Optional edge weight"),
		),
	)
}

// Handle processes the task_relate tool call.
func (t *RelateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID := req.GetString("source_id", "")
	if sourceID == "" {
		return mcp.NewToolResultError("'source_id' is required"), nil
	}
	targetID := req.GetString("target_id", "")
	if targetID == "" {
		return mcp.NewToolResultError("'target_id' is required"), nil
	}
	relType := req.GetString("type", "")
	if relType == "" {
		return mcp.NewToolResultError("'type' is required"), nil
	}

	rel, err := t.svc.CreateRelationship(ctx, taskgraph.CreateRelationshipInput{
		SourceID: sourceID,
		TargetID: targetID,
		Type:     relType,
		Weight:   floatArg(req, "weight"),
	})
	if err != nil {
		return errResult("failed to create relationship", err), nil
	}

	return jsonResult(rel)
}
