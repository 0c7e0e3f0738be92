package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON from a prompt. Implementations wrap a
// vendor SDK; decorators (retry, logging) wrap a Provider.
type Provider interface {
	// Generate runs req and returns its output. With req.Schema set the
	// content is a JSON object validated against that schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

// Request is a single generation call. Worksheet generation always sends one
// user message under a subject specific system prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema selects the vendor's structured output mode. Nil means free
	// text, returned as a JSON string.
	Schema *Schema

	// MaxTokens caps the response. Zero uses the provider default.
	MaxTokens int

	// Temperature in [0, 1]; zero is deterministic.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document. Name is kebab-case
// ("math-problems") and doubles as the tool or schema name on vendors that
// require one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the output of one successful call.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the call, which may differ
	// from the configured alias.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
