// Package llm is a thin provider-neutral client for asking a language
// model for schema-constrained JSON. It is used to infer study topics
// from a learner's notes.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one request to a model.
type Provider interface {
	// Generate returns the model output. When req.Schema is set the
	// content has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model.
	ModelID() string
}

// Request is a single-turn or short multi-turn prompt.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is who said a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema the answer must satisfy.
type Schema struct {
	// Name doubles as the tool or schema name sent to the provider.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model answer.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage is token accounting for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

const (
	stopEnd       = "end"
	stopMaxTokens = "max_tokens"
)

// resolveModel expands a short alias; unknown names pass through.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
