// Package genai isolates the core from the generative-text backend.
//
// The Generator interface has exactly two implementations, selected once
// at construction: Client talks to an OpenAI-compatible chat-completions
// API, Disabled produces deterministic fallbacks. Call sites never branch
// on whether a backend is configured.
package genai

import (
	"context"

	"github.com/HendryAvila/taskgraph/internal/graph"
)

// Subtask is one proposed subtask produced by decomposition. Status is
// defaulted to TODO downstream; the generator only proposes text.
type Subtask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Generator produces natural-language output for task operations.
//
// Summarize is a soft operation: it always returns text, degrading to a
// fixed fallback string when the backend is unavailable or errors.
//
// Decompose returns proposed subtasks. An unconfigured backend yields a
// deterministic two-part placeholder decomposition; backend output that
// cannot be parsed yields an empty slice ("nothing to add", not an
// error). A hard backend failure returns a non-nil error, which aborts
// the whole decomposition before any writes.
type Generator interface {
	Summarize(ctx context.Context, tasks []graph.Task) string
	Decompose(ctx context.Context, task graph.Task) ([]Subtask, error)
}

// Fallback strings mirror the behavior clients already rely on.
const (
	summaryDisabled = "AI summarization is disabled. Please configure an API key to enable this feature."
	summaryFailed   = "Failed to generate summary. Please try again later."
	partPlaceholder = "AI decomposition is disabled. This is a placeholder subtask."
)

// maxSubtasks caps how many proposed subtasks a decomposition may yield.
const maxSubtasks = 5

// New selects the Generator implementation from the configuration: a
// real backend client when an API key is present, the deterministic
// fallback otherwise.
func New(cfg Config) Generator {
	if cfg.APIKey == "" {
		return Disabled{}
	}
	return newClient(cfg)
}

// Disabled is the deterministic fallback Generator used when no backend
// is configured.
type Disabled struct{}

// Summarize returns the fixed disabled-feature notice.
func (Disabled) Summarize(ctx context.Context, tasks []graph.Task) string {
	return summaryDisabled
}

// Decompose returns exactly two placeholder subtasks derived from the
// task title.
func (Disabled) Decompose(ctx context.Context, task graph.Task) ([]Subtask, error) {
	return []Subtask{
		{Title: task.Title + " - Part 1", Description: partPlaceholder},
		{Title: task.Title + " - Part 2", Description: partPlaceholder},
	}, nil
}
