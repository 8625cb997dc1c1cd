// Package llm is the model layer behind the assistant panel: one Provider
// interface over a local Ollama server, OpenAI-compatible servers, Anthropic
// and Gemini, plus retry and event-logging decorators.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider generates one reply per call.
//
// Failures that come from the remote side are *external.ServiceError values
// wrapping one of this package's typed errors (ErrRateLimit, ErrRejected,
// ErrProviderUnavailable), so the assistant panel and the sync card report
// outages the same way. Context cancellation is returned as is.
type Provider interface {
	// Generate answers req. With req.Schema set the reply is JSON that has
	// already been validated against the schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

// Request is a single assistant call: a study question, or a structured
// "what next" pick among actionable roadmap items.
type Request struct {
	System   string
	Messages []Message

	// Schema requests structured output. Nil means free markdown text.
	Schema *Schema

	// MaxTokens caps the reply. Zero leaves it to the provider, except for
	// Anthropic which needs an explicit limit and substitutes its own.
	MaxTokens int

	// Temperature in [0, 1]. Zero asks for deterministic output.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema for structured replies. Name doubles as the
// OpenAI schema name and as the key of the compiled-schema cache, so it
// must change whenever Definition does (e.g. "next-item-1a2b3c4d").
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a provider's reply.
type Response struct {
	// Content is validated JSON for structured requests and the raw reply
	// text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is "end", "max_tokens" or "error".
	StopReason string
}

// Text returns Content as trimmed text, for free-form answers.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Content))
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}
