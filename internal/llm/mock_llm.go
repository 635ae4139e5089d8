package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider using testify/mock.
type MockProvider struct {
	mock.Mock
	ProviderName ProviderName
}

func (m *MockProvider) Name() ProviderName {
	return m.ProviderName
}

func (m *MockProvider) Call(ctx context.Context, prompt, credential string) (string, error) {
	args := m.Called(ctx, prompt, credential)
	return args.String(0), args.Error(1)
}
