// Package tools provides the MCP tool handlers for the task graph.
//
// Each tool handler follows the same pattern:
// - A struct with dependencies (taskgraph.Service) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Successful results carry the JSON encoding of the domain value;
// validation failures and missing records come back as tool errors so
// the caller can surface them without a protocol-level failure.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HendryAvila/taskgraph/internal/graph"
	"github.com/HendryAvila/taskgraph/internal/taskgraph"
	"github.com/mark3labs/mcp-go/mcp"
)

// jsonResult encodes v as indented JSON in a text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// floatArg extracts a numeric argument from a tool request, returning
// nil if the key is missing or not a number.
func floatArg(req mcp.CallToolRequest, key string) *float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// errResult maps a service error onto a tool error result. Expected
// failures (bad input, missing records, forbidden operations) keep
// their sentinel message; anything else is prefixed with the failing
// operation.
func errResult(op string, err error) *mcp.CallToolResult {
	switch {
	case taskgraph.IsValidation(err),
		errors.Is(err, graph.ErrNotFound):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", op, err))
	}
}
