// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tools that depend on them. No business
// logic lives here — only wiring.
package server

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/HendryAvila/taskgraph/internal/config"
	"github.com/HendryAvila/taskgraph/internal/genai"
	"github.com/HendryAvila/taskgraph/internal/graph"
	"github.com/HendryAvila/taskgraph/internal/taskgraph"
	"github.com/HendryAvila/taskgraph/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all task graph tools
// registered. This is the single place where all dependencies are
// resolved.
//
// The returned cleanup function closes the store's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	log := newLogger(cfg.LogLevel)

	// --- Create shared dependencies ---

	store, err := graph.New(graph.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, noop, fmt.Errorf("opening graph store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("graph store close", "error", err)
		}
	}

	gen := genai.New(genai.Config{
		APIKey:  cfg.GenAI.APIKey,
		BaseURL: cfg.GenAI.BaseURL,
		Model:   cfg.GenAI.Model,
		Timeout: cfg.GenAITimeout(),
	})
	if cfg.GenAI.APIKey == "" {
		log.Info("no API key configured, using fallback generator")
	}

	svc := taskgraph.New(store, gen, taskgraph.Options{
		Timeout:     cfg.Timeout(),
		Environment: cfg.Environment,
		Logger:      log,
	})

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"taskgraph",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register task tools ---

	createTool := tools.NewCreateTaskTool(svc)
	s.AddTool(createTool.Definition(), createTool.Handle)

	listTool := tools.NewListTasksTool(svc)
	s.AddTool(listTool.Definition(), listTool.Handle)

	relateTool := tools.NewRelateTool(svc)
	s.AddTool(relateTool.Definition(), relateTool.Handle)

	graphTool := tools.NewGraphTool(svc)
	s.AddTool(graphTool.Definition(), graphTool.Handle)

	summarizeTool := tools.NewSummarizeTool(svc)
	s.AddTool(summarizeTool.Definition(), summarizeTool.Handle)

	decomposeTool := tools.NewDecomposeTool(svc)
	s.AddTool(decomposeTool.Definition(), decomposeTool.Handle)

	deleteTool := tools.NewDeleteTaskTool(svc)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	// task_wipe is registered unconditionally; the service itself
	// refuses it outside the test environment.
	wipeTool := tools.NewWipeTool(svc)
	s.AddTool(wipeTool.Definition(), wipeTool.Handle)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used when store init failed.
func noop() {}

// newLogger builds the server-wide slog.Logger. Output goes to stderr
// so it never interferes with MCP's stdio transport on stdout.
func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

// serverInstructions returns the guidance text sent to MCP clients.
func serverInstructions() string {
	return `Taskgraph maintains a persistent graph of tasks and typed relationships.

Workflow:
1. Create tasks with task_create; every task needs a non-empty title.
2. Connect tasks with task_relate using DEPENDS_ON, RELATED_TO or SUBTASK_OF.
3. Inspect the whole graph with graph_get, or list records with task_list.
4. Use task_summarize to get a narrative of everything connected to a task,
   and task_decompose to break a task into persisted subtasks.
5. Remove tasks with task_delete; their relationships go with them.

Task IDs are opaque strings returned by task_create — always use the id
from a previous result, never invent one.`
}
