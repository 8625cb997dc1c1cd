package llm

import (
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/abhisek/roadmapper/internal/external"
)

func TestGeminiSchema_NextItem(t *testing.T) {
	schema := geminiSchema(nextItemSchema().Definition)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected object type, got %s", schema.Type)
	}
	if len(schema.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(schema.Properties))
	}
	item := schema.Properties["itemId"]
	if item.Type != genai.TypeString || len(item.Enum) != 2 {
		t.Errorf("itemId should be a string enum of the actionable items, got %+v", item)
	}
	if schema.Properties["confidence"].Type != genai.TypeNumber {
		t.Errorf("confidence type = %s", schema.Properties["confidence"].Type)
	}
	if len(schema.Required) != 2 {
		t.Errorf("expected 2 required fields, got %v", schema.Required)
	}
}

func TestGeminiSchema_GoSlices(t *testing.T) {
	// Schemas built in Go carry []string rather than decoded []any.
	schema := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": []string{"rag", "agents"}},
			},
		},
		"required": []string{"topics"},
	})

	topics := schema.Properties["topics"]
	if topics.Type != genai.TypeArray || topics.Items == nil {
		t.Fatalf("topics should be an array, got %+v", topics)
	}
	if len(topics.Items.Enum) != 2 {
		t.Errorf("expected item enum of 2, got %v", topics.Items.Enum)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "topics" {
		t.Errorf("required = %v", schema.Required)
	}
}

func TestGeminiContents_Roles(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: RoleUser, Content: "What is LoRA?"},
		{Role: RoleAssistant, Content: "A low-rank adapter."},
		{Role: RoleUser, Content: "And QLoRA?"},
	})

	want := []string{"user", "model", "user"}
	if len(contents) != len(want) {
		t.Fatalf("expected %d contents, got %d", len(want), len(contents))
	}
	for i, c := range contents {
		if string(c.Role) != want[i] {
			t.Errorf("contents[%d].Role = %q, want %q", i, c.Role, want[i])
		}
		if len(c.Parts) != 1 || c.Parts[0].Text == "" {
			t.Errorf("contents[%d] should carry one text part", i)
		}
	}
}

func TestGeminiError(t *testing.T) {
	var (
		rateLimit   *ErrRateLimit
		rejected    *ErrRejected
		unavailable *ErrProviderUnavailable
	)
	tests := []struct {
		name   string
		code   int
		target any
	}{
		{"quota", 429, &rateLimit},
		{"bad key", 403, &rejected},
		{"overloaded", 503, &unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := geminiError(&genai.APIError{Code: tt.code, Message: tt.name})

			var se *external.ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("expected *external.ServiceError, got %T", err)
			}
			if se.Service != "gemini" || se.StatusCode != tt.code {
				t.Errorf("service error = %s/%d", se.Service, se.StatusCode)
			}
			if !errors.As(err, tt.target) {
				t.Errorf("wrong classification for %d: %v", tt.code, err)
			}
		})
	}
}

func TestGeminiError_Transport(t *testing.T) {
	err := geminiError(errors.New("dial tcp: connection refused"))

	var e *ErrProviderUnavailable
	if !errors.As(err, &e) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
}
