package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	model     string
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider named "mock".
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return NewNamedMockProvider("mock", responses...)
}

// NewNamedMockProvider creates a MockProvider reporting model as its ID.
func NewNamedMockProvider(model string, responses ...MockResponse) *MockProvider {
	return &MockProvider{model: model, responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty. A cancelled context wins over the queue.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if err := ctx.Err(); err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Text:       resp.Text,
		Usage:      resp.Usage,
		Model:      m.model,
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return m.model
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
