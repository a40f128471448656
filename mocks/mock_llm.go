package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sjaggi1/resume-parser/internal/services"
)

// MockLLMProvider is a mock implementation of services.LLMProvider.
type MockLLMProvider struct {
	mock.Mock
	ProviderName string
}

func (m *MockLLMProvider) Name() string {
	if m.ProviderName == "" {
		return "mock-llm"
	}
	return m.ProviderName
}

func (m *MockLLMProvider) Complete(ctx context.Context, req services.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}
