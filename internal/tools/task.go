package tools

import (
	"context"

	"github.com/HendryAvila/taskgraph/internal/taskgraph"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── CreateTaskTool ──────────────────────────────────────────────────────────

// CreateTaskTool handles the task_create MCP tool.
type CreateTaskTool struct {
	svc *taskgraph.Service
}

// NewCreateTaskTool creates a CreateTaskTool with the given service.
func NewCreateTaskTool(svc *taskgraph.Service) *CreateTaskTool {
	return &CreateTaskTool{svc: svc}
}

// Definition returns the MCP tool definition for task_create.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("task_create",
		mcp.WithDescription(
			"Create a new task in the task graph. "+
				"Returns the full record including its generated id and timestamps.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title (must not be empty)"),
		),
		mcp.WithString("description",
			mcp.Description("Optional free-form description"),
		),
		mcp.WithString("status",
			mcp.Description("Task status: TODO, IN_PROGRESS or DONE (default: TODO)"),
		),
	)
}

// Handle processes the task_create tool call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	task, err := t.svc.CreateTask(ctx, taskgraph.CreateTaskInput{
		Title:       title,
		Description: req.GetString("description", ""),
		Status:      req.GetString("status", ""),
	})
	if err != nil {
		return errResult("failed to create task", err), nil
	}

	return jsonResult(task)
}

// ─── ListTasksTool ───────────────────────────────────────────────────────────

// ListTasksTool handles the task_list MCP tool.
type ListTasksTool struct {
	svc *taskgraph.Service
}

// NewListTasksTool creates a ListTasksTool with the given service.
func NewListTasksTool(svc *taskgraph.Service) *ListTasksTool {
	return &ListTasksTool{svc: svc}
}

// Definition returns the MCP tool definition for task_list.
func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("task_list",
		mcp.WithDescription(
			"List every task in the graph, oldest first. "+
				"Returns an empty array when no tasks exist.",
		),
	)
}

// Handle processes the task_list tool call.
func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := t.svc.ListTasks(ctx)
	if err != nil {
		return errResult("failed to list tasks", err), nil
	}
	return jsonResult(tasks)
}

// ─── DeleteTaskTool ──────────────────────────────────────────────────────────

// DeleteTaskTool handles the task_delete MCP tool.
type DeleteTaskTool struct {
	svc *taskgraph.Service
}

// NewDeleteTaskTool creates a DeleteTaskTool with the given service.
func NewDeleteTaskTool(svc *taskgraph.Service) *DeleteTaskTool {
	return &DeleteTaskTool{svc: svc}
}

// Definition returns the MCP tool definition for task_delete.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("task_delete",
		mcp.WithDescription(
			"Delete a task and every relationship touching it. "+
				"Deleting a task that does not exist is not an error.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task ID to delete"),
		),
	)
}

// Handle processes the task_delete tool call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	if err := t.svc.DeleteTask(ctx, id); err != nil {
		return errResult("failed to delete task", err), nil
	}

	return mcp.NewToolResultText("Task " + id + " deleted"), nil
}

// ─── WipeTool ────────────────────────────────────────────────────────────────

// WipeTool handles the task_wipe MCP tool.
type WipeTool struct {
	svc *taskgraph.Service
}

// NewWipeTool creates a WipeTool with the given service.
func NewWipeTool(svc *taskgraph.Service) *WipeTool {
	return &WipeTool{svc: svc}
}

// Definition returns the MCP tool definition for task_wipe.
func (t *WipeTool) Definition() mcp.Tool {
	return mcp.NewTool("task_wipe",
		mcp.WithDescription(
			"Delete every task and relationship in the graph. "+
				"Only permitted when the server runs in the test environment.",
		),
	)
}

// Handle processes the task_wipe tool call.
func (t *WipeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.svc.DeleteAllTasks(ctx); err != nil {
		return errResult("failed to wipe tasks", err), nil
	}
	return mcp.NewToolResultText("All tasks deleted"), nil
}
