package tools

import (
	"context"

	"github.com/HendryAvila/taskgraph/internal/taskgraph"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── SummarizeTool ───────────────────────────────────────────────────────────

// SummarizeTool handles the task_summarize MCP tool.
type SummarizeTool struct {
	svc *taskgraph.Service
}

// NewSummarizeTool creates a SummarizeTool with the given service.
func NewSummarizeTool(svc *taskgraph.Service) *SummarizeTool {
	return &SummarizeTool{svc: svc}
}

// Definition returns the MCP tool definition for task_summarize.
func (t *SummarizeTool) Definition() mcp.Tool {
	return mcp.NewTool("task_summarize",
		mcp.WithDescription(
			"Summarize the cluster of tasks connected to the given task, "+
				"following relationships in both directions. "+
				"Returns the summary text plus the tasks it covers.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID anchoring the cluster"),
		),
	)
}

// Handle processes the task_summarize tool call.
func (t *SummarizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	res, err := t.svc.SummarizeConnected(ctx, taskID)
	if err != nil {
		return errResult("failed to summarize tasks", err), nil
	}
	return jsonResult(res)
}

// ─── DecomposeTool ───────────────────────────────────────────────────────────

// DecomposeTool handles the task_decompose MCP tool.
type DecomposeTool struct {
	svc *taskgraph.Service
}

// NewDecomposeTool creates a DecomposeTool with the given service.
func NewDecomposeTool(svc *taskgraph.Service) *DecomposeTool {
	return &DecomposeTool{svc: svc}
}

// Definition returns the MCP tool definition for task_decompose.
func (t *DecomposeTool) Definition() mcp.Tool {
	return mcp.NewTool("task_decompose",
		mcp.WithDescription(
			"Break a task into generated subtasks. Each subtask is persisted "+
				"with the parent recorded and a SUBTASK_OF relationship back to it. "+
				"Returns the subtasks that were created.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID to decompose"),
		),
	)
}

// Handle processes the task_decompose tool call.
func (t *DecomposeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	created, err := t.svc.DecomposeTask(ctx, taskID)
	if err != nil {
		// Subtasks written before the failure stay committed; report
		// the error without listing them so the caller re-reads state.
		return errResult("failed to decompose task", err), nil
	}
	return jsonResult(created)
}
