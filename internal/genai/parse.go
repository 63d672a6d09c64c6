package genai

import (
	"encoding/json"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// subtasksSchema is the shape decompose output must satisfy before it is
// trusted. Anything that fails validation counts as "nothing to add".
const subtasksSchema = `{
	"type": "object",
	"required": ["subtasks"],
	"properties": {
		"subtasks": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title"],
				"properties": {
					"title": {"type": "string", "minLength": 1},
					"description": {"type": "string"}
				}
			}
		}
	}
}`

var compiledSubtasksSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("subtasks.json", strings.NewReader(subtasksSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("subtasks.json")
}

// parseSubtasks extracts and validates the subtask list from raw model
// output. It returns an empty slice for anything malformed — callers
// treat empty as a valid, non-exceptional outcome.
func parseSubtasks(content string) []Subtask {
	raw := extractJSON(content)
	if raw == "" {
		return nil
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}
	if err := compiledSubtasksSchema.Validate(doc); err != nil {
		return nil
	}

	var parsed struct {
		Subtasks []Subtask `json:"subtasks"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}
	return parsed.Subtasks
}

// extractJSON extracts a JSON object from a string, tolerating markdown
// code fences and surrounding prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	// Whole string is already an object.
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}

	// Code block, with or without a language tag.
	if strings.HasPrefix(s, "```") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start >= 0 && end > start {
			return s[start : end+1]
		}
		return ""
	}

	// First balanced JSON object embedded in prose.
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
