package notify

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of Notifier using testify/mock.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, event Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) Close() error {
	args := m.Called()
	return args.Error(0)
}
