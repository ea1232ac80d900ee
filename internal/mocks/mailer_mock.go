package mocks

import (
	"context"

	"github.com/omriShneor/alfred_booking/internal/notify"
	"github.com/stretchr/testify/mock"
)

// MockMailer is a mock implementation of notify.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email notify.Email) (*notify.Delivery, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.Delivery), args.Error(1)
}

func (m *MockMailer) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockMailer) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}
