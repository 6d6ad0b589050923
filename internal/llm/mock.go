package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted answer: either content or an error.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted answers in order and records requests.
// An exhausted script answers with ErrProviderUnavailable, so callers
// exercise their fallback path.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	calls  []Request
}

// NewMockProvider returns a provider that replays script.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return ProviderMock }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: ProviderMock, StopReason: stopEnd}, nil
}

// Push appends answers to the script.
func (m *MockProvider) Push(r ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, r...)
}

// Calls returns a copy of the recorded requests.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}
