package settings

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context) (Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(Settings), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, s Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
