package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/abhisek/roadmapper/internal/config"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"itemId":"rag"}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`Start with embeddings.`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"itemId":"rag"}` {
		t.Fatalf("got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 || resp1.StopReason != "end" {
		t.Fatalf("unexpected response: %+v", resp1)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != "Start with embeddings." {
		t.Fatalf("got %s", resp2.Content)
	}
	if mock.CallCount() != 2 || mock.Calls[1].Messages[0].Content != "second" {
		t.Fatalf("calls not recorded: %+v", mock.Calls)
	}
}

func TestMockProvider_EmptyQueueUnavailable(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestEchoProvider(t *testing.T) {
	p := NewEchoProvider()
	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "what is RAG?"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != "You asked: what is RAG?" {
		t.Fatalf("got %q", resp.Content)
	}

	_, err = p.Generate(context.Background(), Request{Schema: &Schema{Name: "x"}})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("structured request: expected ErrProviderUnavailable, got %v", err)
	}
}

func TestResponse_Text(t *testing.T) {
	resp := &Response{Content: json.RawMessage("\n  **Embeddings** map text to vectors.\n")}
	if got := resp.Text(); got != "**Embeddings** map text to vectors." {
		t.Fatalf("got %q", got)
	}
}

func TestProviderError_Classification(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "unavailable"},
		{400, "rejected"},
		{404, "rejected"},
		{408, "unavailable"},
		{429, "rate limit"},
		{502, "unavailable"},
	}
	for _, tt := range tests {
		err := providerError("openai", tt.status, nil, errors.New("boom"))
		var got string
		var (
			rl  *ErrRateLimit
			rej *ErrRejected
			un  *ErrProviderUnavailable
		)
		switch {
		case errors.As(err, &rl):
			got = "rate limit"
		case errors.As(err, &rej):
			got = "rejected"
		case errors.As(err, &un):
			got = "unavailable"
		}
		if got != tt.want {
			t.Errorf("status %d: got %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestRetryAfterHeader(t *testing.T) {
	h := http.Header{}
	if got := retryAfterHeader(h); got != 0 {
		t.Errorf("missing header: got %s", got)
	}
	h.Set("Retry-After", "7")
	if got := retryAfterHeader(h); got != 7*time.Second {
		t.Errorf("seconds: got %s", got)
	}
	h.Set("Retry-After", time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	if got := retryAfterHeader(h); got != 0 {
		t.Errorf("past date: got %s", got)
	}
	if got := retryAfterHeader(nil); got != 0 {
		t.Errorf("nil header: got %s", got)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, "ask")
	if p := PurposeFrom(ctx); p != "ask" {
		t.Fatalf("expected 'ask', got %q", p)
	}

	a, b := RequestIDFrom(context.Background()), RequestIDFrom(context.Background())
	if a == "" || a == b {
		t.Fatalf("expected distinct generated ids, got %q and %q", a, b)
	}
	ctx = WithRequestID(ctx, "req-1")
	if id := RequestIDFrom(ctx); id != "req-1" {
		t.Fatalf("got %q", id)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ollama default", DefaultConfig(), false},
		{"ollama without url", Config{Provider: "ollama"}, true},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai local server", Config{Provider: "openai", OpenAI: OpenAIConfig{BaseURL: "http://localhost:8080/v1"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromSettings(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_API_KEY", "")

	t.Run("defaults map to ollama", func(t *testing.T) {
		cfg := FromSettings(config.Default().LLM)
		if cfg.Provider != "ollama" || cfg.Ollama.Model != "llama3.2" || cfg.Ollama.BaseURL != "http://127.0.0.1:11434" {
			t.Fatalf("got %+v", cfg.Ollama)
		}
		if cfg.Timeout != 60*time.Second || cfg.Retry.MaxAttempts != 3 {
			t.Fatalf("timeout %v attempts %d", cfg.Timeout, cfg.Retry.MaxAttempts)
		}
	})

	t.Run("switching provider drops ollama defaults", func(t *testing.T) {
		s := config.Default().LLM
		s.Provider = "openai"
		cfg := FromSettings(s)
		if cfg.OpenAI.Model != "gpt-4o-mini" || cfg.OpenAI.BaseURL != "" {
			t.Fatalf("got %+v", cfg.OpenAI)
		}
		if cfg.OpenAI.APIKey != "sk-env" {
			t.Fatalf("expected key from OPENAI_API_KEY, got %q", cfg.OpenAI.APIKey)
		}
	})

	t.Run("explicit key wins over env", func(t *testing.T) {
		cfg := FromSettings(config.LLMConfig{Provider: "openai", APIKey: "sk-file", Model: "gpt-4.1"})
		if cfg.OpenAI.APIKey != "sk-file" || cfg.OpenAI.Model != "gpt-4.1" {
			t.Fatalf("got %+v", cfg.OpenAI)
		}
	})

	t.Run("custom ollama server", func(t *testing.T) {
		cfg := FromSettings(config.LLMConfig{Provider: "ollama", Model: "qwen2.5", BaseURL: "http://gpu-box:11434", MaxAttempts: 1})
		if cfg.Ollama.Model != "qwen2.5" || cfg.Ollama.BaseURL != "http://gpu-box:11434" || cfg.Retry.MaxAttempts != 1 {
			t.Fatalf("got %+v", cfg)
		}
	})
}

func TestConfig_ModelID(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ModelID(); got != "llama3.2" {
		t.Errorf("ollama: got %q", got)
	}
	cfg.Provider = "anthropic"
	if got := cfg.ModelID(); got != "claude-haiku-4-5-20251001" {
		t.Errorf("anthropic: got %q", got)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("got %q", p.ModelID())
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "anthropic"}, nil, nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCostFor(t *testing.T) {
	if c := CostFor("ollama", "llama3.2"); c == nil || c.Cost(1000, 1000) != 0 {
		t.Errorf("local models should be free, got %+v", c)
	}
	c := CostFor("openai", "gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); got < 0.749 || got > 0.751 {
		t.Errorf("cost = %f, want 0.75", got)
	}
	if CostFor("openai", "no-such-model") != nil {
		t.Error("unknown hosted model should have no price")
	}
}
