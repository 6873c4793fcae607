package expand

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a mock implementation of Generator for testing.
type MockGenerator struct {
	// GenerateFunc overrides the default canned response when set.
	GenerateFunc func(ctx context.Context, req PromptRequest) (string, error)

	mu    sync.Mutex
	calls []PromptRequest
}

// NewMockGenerator creates a mock generator with deterministic output.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the call and returns either the configured response or a
// deterministic canned line.
func (m *MockGenerator) Generate(ctx context.Context, req PromptRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return fmt.Sprintf("An evocative account of %s %s in the %s style.",
		req.EntityType, req.EntityID, req.Style), nil
}

// SetError makes every subsequent Generate call fail with err.
func (m *MockGenerator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, req PromptRequest) (string, error) {
		return "", err
	}
}

// Calls returns a copy of all recorded requests.
func (m *MockGenerator) Calls() []PromptRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]PromptRequest, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of Generate invocations so far.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls and any configured override.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.GenerateFunc = nil
}
