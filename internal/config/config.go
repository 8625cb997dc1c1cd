// Package config loads roadmapper configuration.
//
// Values are resolved in three layers: built-in defaults, then the YAML file
// at $ROADMAPPER_CONFIG (or $XDG_CONFIG_HOME/roadmapper/config.yaml), then
// ROADMAPPER_* environment variables. Command-line flags are applied last by
// the caller. A missing config file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full roadmapper configuration.
type Config struct {
	Roadmap RoadmapConfig `yaml:"roadmap"`
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
	Sync    SyncConfig    `yaml:"sync"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// RoadmapConfig selects the roadmap document.
type RoadmapConfig struct {
	// Path to a JSON/JSONC roadmap. Empty means the built-in roadmap.
	Path string `yaml:"path"`
}

// StorageConfig selects and configures the progress persistence backend.
type StorageConfig struct {
	// Backend is one of "file", "sqlite", "redis", "memory".
	Backend string `yaml:"backend"`

	// Dir is the data directory for the file and sqlite backends.
	Dir string `yaml:"dir"`

	// ProgressKey is the key under which the progress map is stored.
	ProgressKey string `yaml:"progress_key"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LLMConfig configures the assistant's model provider.
type LLMConfig struct {
	// Provider is one of "ollama", "openai", "anthropic", "gemini", "mock".
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`

	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// SyncConfig configures the sync-status widget backend.
type SyncConfig struct {
	// URL of the sync-status endpoint. Empty disables the widget.
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures the browser dashboard API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// AllowedOrigin is echoed in Access-Control-Allow-Origin.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	// File, when set, receives log output instead of stderr.
	File string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:     "file",
			ProgressKey: "progress",
			Redis: RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "roadmapper:",
			},
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "llama3.2",
			BaseURL:     "http://127.0.0.1:11434",
			Timeout:     60 * time.Second,
			MaxAttempts: 3,
		},
		Sync: SyncConfig{
			Timeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8787",
			AllowedOrigin: "*",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath resolves the config file path:
// 1. ROADMAPPER_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/roadmapper/config.yaml
// 3. ~/.config/roadmapper/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("ROADMAPPER_CONFIG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "roadmapper", "config.yaml"), nil
}

// Load reads the config file at path (or the default path when empty),
// then applies environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	setString("ROADMAPPER_ROADMAP", &c.Roadmap.Path)
	setString("ROADMAPPER_BACKEND", &c.Storage.Backend)
	setString("ROADMAPPER_DATA", &c.Storage.Dir)
	setString("ROADMAPPER_PROGRESS_KEY", &c.Storage.ProgressKey)
	setString("ROADMAPPER_REDIS_ADDR", &c.Storage.Redis.Addr)
	setString("ROADMAPPER_REDIS_PASSWORD", &c.Storage.Redis.Password)
	setString("ROADMAPPER_LLM_PROVIDER", &c.LLM.Provider)
	setString("ROADMAPPER_LLM_MODEL", &c.LLM.Model)
	setString("ROADMAPPER_LLM_BASE_URL", &c.LLM.BaseURL)
	setString("ROADMAPPER_LLM_API_KEY", &c.LLM.APIKey)
	setString("ROADMAPPER_SYNC_URL", &c.Sync.URL)
	setString("ROADMAPPER_ADDR", &c.Server.Addr)
	setString("ROADMAPPER_LOG_LEVEL", &c.Logging.Level)
	setString("ROADMAPPER_LOG_FILE", &c.Logging.File)

	if v := os.Getenv("ROADMAPPER_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROADMAPPER_REDIS_DB: %w", err)
		}
		c.Storage.Redis.DB = n
	}
	if v := os.Getenv("ROADMAPPER_LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ROADMAPPER_LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}
	if v := os.Getenv("ROADMAPPER_LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ROADMAPPER_LOG_JSON: %w", err)
		}
		c.Logging.JSON = b
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}
	if c.Storage.ProgressKey == "" {
		return errors.New("storage.progress_key must not be empty")
	}
	switch c.LLM.Provider {
	case "ollama", "openai", "anthropic", "gemini", "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.LLM.Provider)
	}
	return nil
}
