package mocks

import (
	"context"

	"github.com/omriShneor/alfred_booking/internal/agent"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of agent.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Call(ctx context.Context, messages []agent.Message, opts agent.CallOptions) (*agent.APIResponse, error) {
	args := m.Called(ctx, messages, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.APIResponse), args.Error(1)
}

func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProvider) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}
