package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned reply for MockProvider.
type MockResponse struct {
	Text string
	Err  error
}

type MockCall struct {
	APIKey  string
	Request Request
}

// MockProvider returns canned replies in FIFO order and records every call.
// When the queue is empty it answers with Fallback.
type MockProvider struct {
	mu        sync.Mutex
	service   string
	responses []MockResponse
	Fallback  MockResponse
	Calls     []MockCall
}

func NewMockProvider(service string, responses ...MockResponse) *MockProvider {
	return &MockProvider{
		service:   service,
		responses: responses,
		Fallback:  MockResponse{Text: "mock response"},
	}
}

func (m *MockProvider) Service() string { return m.service }
func (m *MockProvider) Model() string   { return "mock" }

func (m *MockProvider) Generate(_ context.Context, apiKey string, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{APIKey: apiKey, Request: req})
	resp := m.Fallback
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{Text: resp.Text, Model: "mock"}, nil
}

func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockProvider) LastCall() (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return MockCall{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
