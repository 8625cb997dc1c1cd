package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider. It returns canned responses in
// FIFO order and records all requests. When the queue is empty it uses
// Fallback, or reports the provider as unavailable.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	// Fallback answers requests once the queue is drained.
	Fallback func(Request) MockResponse
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewEchoProvider returns a MockProvider that answers every free-text
// request by quoting the last user message. Structured requests fail as
// unavailable. It backs the "mock" provider so the assistant can be
// exercised offline.
func NewEchoProvider() *MockProvider {
	m := NewMockProvider()
	m.Fallback = func(req Request) MockResponse {
		if req.Schema != nil {
			return MockResponse{Err: &ErrProviderUnavailable{Err: fmt.Errorf("mock provider has no structured output")}}
		}
		var last string
		for _, msg := range req.Messages {
			if msg.Role == RoleUser {
				last = msg.Content
			}
		}
		return MockResponse{
			Content: json.RawMessage("You asked: " + last),
			Usage:   Usage{InputTokens: len(last), OutputTokens: len(last) + 11, TotalTokens: 2*len(last) + 11},
		}
	}
	return m
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.Fallback != nil:
		resp = m.Fallback(req)
	default:
		return nil, &ErrProviderUnavailable{}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
