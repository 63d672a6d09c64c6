// Taskgraph: persistent task graph MCP server
//
// Maintains a graph of tasks connected by typed relationships
// (DEPENDS_ON, RELATED_TO, SUBTASK_OF) with AI-assisted summarization
// and decomposition, exposed to any MCP client over stdio.
//
// Usage:
//
//	taskgraph serve              # Start MCP server (stdio transport)
//	taskgraph serve -config p    # Start with an explicit config file
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/HendryAvila/taskgraph/internal/config"
	tgserver "github.com/HendryAvila/taskgraph/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("taskgraph v%s\n", tgserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a taskgraph.toml config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	s, cleanup, err := tgserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// ServeStdio installs its own signal handling and returns once the
	// client disconnects or the process is interrupted.
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Taskgraph v%s — task graph MCP server

Usage:
  taskgraph serve [-config path]   Start the MCP server (stdio transport)
  taskgraph version                Print the version

Configuration:
  Settings come from taskgraph.toml (working directory or ~/.taskgraph/)
  and environment variables (TASKGRAPH_DATA_DIR, TASKGRAPH_ENV,
  TASKGRAPH_LOG_LEVEL, TASKGRAPH_TIMEOUT_SECONDS, OPENAI_API_KEY).

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "taskgraph": {
        "command": "taskgraph",
        "args": ["serve"]
      }
    }
  }
`, tgserver.Version)
}
