package mocks

import (
	"context"

	"github.com/omriShneor/alfred_booking/internal/gcal"
	"github.com/stretchr/testify/mock"
)

// MockCalendar is a mock implementation of the calendar client
type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) IsAuthenticated() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockCalendar) ListEvents(ctx context.Context, opts gcal.ListOptions) ([]gcal.Event, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gcal.Event), args.Error(1)
}

func (m *MockCalendar) GetEvent(ctx context.Context, eventID string) (*gcal.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.Event), args.Error(1)
}

func (m *MockCalendar) InsertEvent(ctx context.Context, event gcal.Event) (*gcal.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.Event), args.Error(1)
}

func (m *MockCalendar) UpdateEvent(ctx context.Context, event gcal.Event) (*gcal.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.Event), args.Error(1)
}

func (m *MockCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}
