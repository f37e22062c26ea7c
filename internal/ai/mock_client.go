package ai

import (
	"context"
	"strings"
)

// MockClient is a mock implementation of Client for testing
type MockClient struct {
	GenerateTextFunc func(ctx context.Context, prompt, model string, maxTokens int) (string, error)

	// Calls records every prompt the mock received, in order.
	Calls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GenerateText(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
	m.Calls = append(m.Calls, prompt)

	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt, model, maxTokens)
	}

	// Default mock behavior: echo the first few words back
	const limit = 48
	if len(prompt) > limit {
		return strings.TrimSpace(prompt[:limit]), nil
	}
	return strings.TrimSpace(prompt), nil
}
