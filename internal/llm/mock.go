package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// offlineFixtures are replayed by the "mock" provider once its queue is
// empty, keyed by request purpose. They let the explanation and hint flows
// run end to end without an API key.
var offlineFixtures = map[string]MockResponse{
	PurposeExplanation: {
		Content: json.RawMessage(`{"explanation":"Offline mode: no LLM provider is configured, so this is a placeholder explanation. Compare the correct answer with the distractors and look for the requirement that rules each distractor out."}`),
		Usage:   newUsage(0, 0),
	},
	PurposeHint: {
		Content: json.RawMessage(`{"hint":"Offline mode: reread the question and underline the constraint that matters most, such as cost, latency or operational overhead."}`),
		Usage:   newUsage(0, 0),
	},
}

// MockProvider is a deterministic Provider. It returns queued responses in
// FIFO order and records every request. When the queue is empty it falls
// back to its fixtures for the request's purpose, if any.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	fixtures  map[string]MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses and
// no fixtures, so running out of responses reports the provider unavailable.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewOfflineProvider returns a MockProvider that answers every explanation
// and hint request with a fixed placeholder.
func NewOfflineProvider() *MockProvider {
	return &MockProvider{fixtures: offlineFixtures}
}

// Generate returns the next canned response, validated against the request
// schema like a real provider's reply would be.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var resp MockResponse
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	} else if fx, ok := m.fixtures[PurposeFrom(ctx)]; ok {
		resp = fx
	} else {
		return nil, &ErrProviderUnavailable{}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	return finish(req, resp.Content, resp.Usage, "mock", StopEnd)
}

// ModelID returns "mock".
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
