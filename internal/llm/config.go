package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/abhisek/roadmapper/internal/config"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "ollama", "anthropic", "openai", "gemini", "mock"
	Provider string

	Ollama    OllamaConfig
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout is the maximum duration for a single assistant call
	// (including retries). Default: 60s.
	Timeout time.Duration
}

// OllamaConfig holds configuration for a local Ollama-compatible server.
type OllamaConfig struct {
	BaseURL string // Default: "http://127.0.0.1:11434"
	Model   string // Default: "llama3.2"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Any OpenAI-compatible server.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "ollama",
		Ollama: OllamaConfig{
			BaseURL: defaultOllamaBaseURL,
			Model:   "llama3.2",
		},
		Anthropic: AnthropicConfig{
			Model: DefaultAnthropicModel,
		},
		OpenAI: OpenAIConfig{
			Model: DefaultOpenAIModel,
		},
		Gemini: GeminiConfig{
			Model: DefaultGeminiModel,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// FromSettings maps the llm section of the application config onto the
// selected provider. Model and base URL are only carried over when they
// differ from the built-in Ollama defaults, so switching provider alone
// picks that provider's default model. A missing API key falls back to the
// provider's conventional environment variable.
func FromSettings(s config.LLMConfig) Config {
	cfg := DefaultConfig()
	def := config.Default().LLM

	if s.Provider != "" {
		cfg.Provider = s.Provider
	}
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	if s.MaxAttempts > 0 {
		cfg.Retry.MaxAttempts = s.MaxAttempts
	}

	model := s.Model
	baseURL := s.BaseURL
	if cfg.Provider != "ollama" {
		if model == def.Model {
			model = ""
		}
		if baseURL == def.BaseURL {
			baseURL = ""
		}
	}

	switch cfg.Provider {
	case "ollama":
		if model != "" {
			cfg.Ollama.Model = model
		}
		if baseURL != "" {
			cfg.Ollama.BaseURL = baseURL
		}
	case "anthropic":
		cfg.Anthropic.APIKey = firstNonEmpty(s.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if model != "" {
			cfg.Anthropic.Model = model
		}
	case "openai":
		cfg.OpenAI.APIKey = firstNonEmpty(s.APIKey, os.Getenv("OPENAI_API_KEY"))
		cfg.OpenAI.BaseURL = baseURL
		if model != "" {
			cfg.OpenAI.Model = model
		}
	case "gemini":
		cfg.Gemini.APIKey = firstNonEmpty(s.APIKey, os.Getenv("GEMINI_API_KEY"))
		if model != "" {
			cfg.Gemini.Model = model
		}
	}
	return cfg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that the selected provider has what it needs to run.
func (c Config) Validate() error {
	switch c.Provider {
	case "ollama":
		if c.Ollama.BaseURL == "" {
			return fmt.Errorf("llm.base_url is required for the ollama provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY (or llm.api_key) is required for the anthropic provider")
		}
	case "openai":
		// Local OpenAI-compatible servers usually accept any key.
		if c.OpenAI.APIKey == "" && c.OpenAI.BaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY (or llm.api_key) is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY (or llm.api_key) is required for the gemini provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// ModelID returns the model the selected provider is configured with.
func (c Config) ModelID() string {
	switch c.Provider {
	case "ollama":
		return c.Ollama.Model
	case "anthropic":
		return resolveModel(c.Anthropic.Model, DefaultAnthropicModel, anthropicModels)
	case "openai":
		return resolveModel(c.OpenAI.Model, DefaultOpenAIModel, openaiModels)
	case "gemini":
		return resolveModel(c.Gemini.Model, DefaultGeminiModel, geminiModels)
	default:
		return c.Provider
	}
}
