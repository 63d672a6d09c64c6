package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/HendryAvila/taskgraph/internal/graph"
)

// Config holds generation backend settings.
type Config struct {
	// APIKey enables the real backend; empty selects the fallback.
	APIKey string
	// BaseURL is the API root of an OpenAI-compatible endpoint.
	BaseURL string
	// Model is the chat model name.
	Model string
	// Timeout bounds each backend call.
	Timeout time.Duration
}

// DefaultConfig returns the default generation settings.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4",
		Timeout: 60 * time.Second,
	}
}

// Client is the Generator backed by an OpenAI-compatible chat-completions
// endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

func newClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// ─── Wire types ──────────────────────────────────────────────────────────────

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete issues one chat-completions call and returns the first
// choice's content.
func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("genai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("genai: call backend: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("genai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genai: backend returned %s", resp.Status)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("genai: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("genai: backend returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ─── Summarize ───────────────────────────────────────────────────────────────

// Summarize asks the backend for a concise synopsis of the given tasks.
// Any backend failure degrades to a fixed fallback string.
func (c *Client) Summarize(ctx context.Context, tasks []graph.Task) string {
	var b strings.Builder
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s: %s\n", t.Title, t.Description)
	}

	content, err := c.complete(ctx, chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a task summarizer. Given a list of related tasks, create a concise summary that captures their overall objective.",
			},
			{
				Role:    "user",
				Content: "Summarize these related tasks:\n" + b.String(),
			},
		},
		Temperature: 0.7,
		MaxTokens:   150,
	})
	if err != nil {
		return summaryFailed
	}
	if content == "" {
		return "No summary generated"
	}
	return content
}

// ─── Decompose ───────────────────────────────────────────────────────────────

// Decompose asks the backend to break the task into subtasks. A hard
// backend failure returns an error; output that fails to parse or
// validate returns an empty slice.
func (c *Client) Decompose(ctx context.Context, task graph.Task) ([]Subtask, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a task decomposition expert. Break down the given task into smaller, manageable subtasks. Respond with a JSON object of the form {\"subtasks\": [{\"title\": ..., \"description\": ...}]}.",
			},
			{
				Role: "user",
				Content: fmt.Sprintf("Break down this task into 3-5 subtasks:\nTitle: %s\nDescription: %s",
					task.Title, task.Description),
			},
		},
		Temperature:    0.7,
		MaxTokens:      500,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	subtasks := parseSubtasks(content)
	if len(subtasks) > maxSubtasks {
		subtasks = subtasks[:maxSubtasks]
	}
	return subtasks, nil
}
