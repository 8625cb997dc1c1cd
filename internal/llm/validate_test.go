package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func nextItemSchema() *Schema {
	return &Schema{
		Name:        "test-next-item",
		Description: "A study suggestion",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"itemId":     map[string]any{"type": "string", "enum": []any{"rag", "fine-tuning"}},
				"reason":     map[string]any{"type": "string", "minLength": 1},
				"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			},
			"required":             []any{"itemId", "reason"},
			"additionalProperties": false,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"itemId":"rag","reason":"next in line","confidence":0.8}`, false},
		{"optional omitted", `{"itemId":"fine-tuning","reason":"ready"}`, false},
		{"missing required", `{"itemId":"rag"}`, true},
		{"unknown item", `{"itemId":"cooking","reason":"why not"}`, true},
		{"wrong type", `{"itemId":"rag","reason":3}`, true},
		{"out of range", `{"itemId":"rag","reason":"x","confidence":2}`, true},
		{"extra field", `{"itemId":"rag","reason":"x","mood":"good"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(nextItemSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidate_NilSchema(t *testing.T) {
	if err := Validate(nil, json.RawMessage(`plain text answer`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidate_NestedArray(t *testing.T) {
	schema := &Schema{
		Name: "test-plan",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"steps": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":       "object",
						"properties": map[string]any{"itemId": map[string]any{"type": "string"}},
						"required":   []any{"itemId"},
					},
				},
			},
			"required": []any{"steps"},
		},
	}
	if err := Validate(schema, json.RawMessage(`{"steps":[{"itemId":"rag"},{"itemId":"vector-dbs"}]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(schema, json.RawMessage(`{"steps":[{"id":"rag"}]}`)); err == nil {
		t.Fatal("expected error for step without itemId")
	}
}
