// Package assistant backs the assistant panel: free-form questions and a
// structured "what next" suggestion, both answered by the configured LLM
// provider. Failures come back as *external.ServiceError and never touch
// roadmap progress.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/external"
	"github.com/abhisek/roadmapper/internal/llm"
)

// ServiceName labels errors from this package.
const ServiceName = "assistant"

var (
	// ErrEmptyPrompt is returned for blank questions.
	ErrEmptyPrompt = errors.New("assistant: empty prompt")

	// ErrNothingActionable means no item is in progress or ready to start.
	ErrNothingActionable = errors.New("assistant: no actionable items")
)

// Config tunes generation.
type Config struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	// Candidates caps how many actionable items SuggestNext offers the model.
	Candidates int
}

// DefaultConfig returns the assistant defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:     60 * time.Second,
		MaxTokens:   1024,
		Temperature: 0.3,
		Candidates:  8,
	}
}

// Answer is the reply to a free-form question.
type Answer struct {
	RequestID string    `json:"requestId"`
	Text      string    `json:"text"`
	Model     string    `json:"model"`
	Usage     llm.Usage `json:"usage"`
}

// Suggestion is the model's pick of what to study next.
type Suggestion struct {
	RequestID string  `json:"requestId"`
	ItemID    string  `json:"itemId"`
	Label     string  `json:"label"`
	Reason    string  `json:"reason"`
	Progress  float64 `json:"progress"`
}

// Service answers assistant requests.
type Service struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewService creates an assistant service over provider.
func NewService(provider llm.Provider, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = DefaultConfig().Candidates
	}
	return &Service{provider: provider, cfg: cfg, logger: logger}
}

// Ask sends prompt to the model and returns its text reply.
func (s *Service) Ask(ctx context.Context, prompt string) (*Answer, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	requestID := uuid.NewString()
	ctx, cancel := s.scope(ctx, "ask", requestID)
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      askSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Warn("assistant ask failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, external.Wrap(ServiceName, err)
	}

	return &Answer{
		RequestID: requestID,
		Text:      resp.Text(),
		Model:     resp.Model,
		Usage:     resp.Usage,
	}, nil
}

type suggestionOutput struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// SuggestNext asks the model to choose among the shell's actionable items.
func (s *Service) SuggestNext(ctx context.Context, shell *dashboard.Shell) (*Suggestion, error) {
	candidates := shell.Next(s.cfg.Candidates)
	if len(candidates) == 0 {
		return nil, ErrNothingActionable
	}
	ids := make([]string, len(candidates))
	byID := make(map[string]dashboard.Card, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	requestID := uuid.NewString()
	ctx, cancel := s.scope(ctx, "suggest-next", requestID)
	defer cancel()

	schema := suggestionSchema(ids)
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      suggestSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildSuggestMessage(shell.Stats(), candidates)}},
		Schema:      schema,
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		s.logger.Warn("assistant suggestion failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, external.Wrap(ServiceName, err)
	}

	// Providers validate natively, but not all of them (mock, some local
	// servers) enforce enums.
	if err := llm.Validate(schema, resp.Content); err != nil {
		return nil, external.Wrap(ServiceName, err)
	}
	var out suggestionOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, external.Wrap(ServiceName, fmt.Errorf("parse suggestion: %w", err))
	}

	card := byID[out.ItemID]
	return &Suggestion{
		RequestID: requestID,
		ItemID:    out.ItemID,
		Label:     card.Label,
		Reason:    out.Reason,
		Progress:  card.Progress,
	}, nil
}

func (s *Service) scope(ctx context.Context, purpose, requestID string) (context.Context, context.CancelFunc) {
	ctx = llm.WithRequestID(llm.WithPurpose(ctx, purpose), requestID)
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
