package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/alfred_booking/internal/agent"
	"github.com/omriShneor/alfred_booking/internal/agent/booking"
	"github.com/omriShneor/alfred_booking/internal/appointment"
	"github.com/omriShneor/alfred_booking/internal/mocks"
	"github.com/omriShneor/alfred_booking/internal/normalize"
	"github.com/omriShneor/alfred_booking/internal/testutil"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

func fixedNormalizer() *normalize.Normalizer {
	loc, _ := timeutil.ResolveLocation(timeutil.DefaultTimezone)
	now := time.Date(2025, 8, 14, 10, 0, 0, 0, loc)
	return normalize.New(loc, normalize.MonthFirst).WithClock(func() time.Time { return now })
}

func newAgent(t *testing.T, provider agent.Provider) (*booking.Agent, *testutil.FakeCalendar) {
	t.Helper()
	norm := fixedNormalizer()
	cal := testutil.NewFakeCalendar()
	svc := appointment.NewService(appointment.Options{
		Calendar:   cal,
		Mailer:     testutil.NewRecordingMailer(),
		Normalizer: norm,
	})

	a, err := booking.NewAgent(booking.Config{
		Provider:   provider,
		Operations: svc,
		Normalizer: norm,
		MaxTurns:   3,
	})
	require.NoError(t, err)
	return a, cal
}

func TestSystemPrompt_EmbedsCurrentDate(t *testing.T) {
	a, _ := newAgent(t, testutil.NewScriptedProvider())

	prompt := a.SystemPrompt()
	assert.Contains(t, prompt, "Today is 2025-08-14 (Thursday)")
	assert.Contains(t, prompt, "10:00")
	assert.Contains(t, prompt, "time zone")
	assert.Len(t, a.Tools(), 7)
}

func TestChat_RunsToolAndReplies(t *testing.T) {
	provider := testutil.NewScriptedProvider(
		testutil.ToolUseTurn("call_1", "schedule_appointment", map[string]any{
			"date": "tomorrow", "time": "3 PM", "purpose": "Checkup",
			"client_name": "Jane", "client_email": "jane@example.com",
		}),
		testutil.TextTurn("You're booked for 2025-08-15 at 15:00."),
	)
	a, cal := newAgent(t, provider)

	reply, err := a.Chat(context.Background(), []booking.ChatMessage{
		{Role: "system", Content: "Answer in English."},
		{Role: "user", Content: "Book me tomorrow at 3pm for a checkup. Jane, jane@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "You're booked for 2025-08-15 at 15:00.", reply.Content)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "schedule_appointment", reply.ToolCalls[0].Name)
	assert.Contains(t, reply.ToolCalls[0].Output, `"success":true`)
	assert.Empty(t, reply.ToolCalls[0].Error)
	assert.Len(t, cal.GetEvents(), 1)

	systems := provider.Systems()
	require.NotEmpty(t, systems)
	assert.Contains(t, systems[0], "Today is 2025-08-14")
	assert.Contains(t, systems[0], "Answer in English.")
}

func TestChat_ToolInputErrorIsSurfaced(t *testing.T) {
	provider := testutil.NewScriptedProvider(
		testutil.ToolUseTurn("call_1", "cancel_appointment", map[string]any{"client_email": "jane@example.com"}),
		testutil.TextTurn("Which date and time?"),
	)
	a, cal := newAgent(t, provider)

	reply, err := a.Chat(context.Background(), []booking.ChatMessage{{Role: "user", Content: "cancel my appointment"}})
	require.NoError(t, err)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "date is required", reply.ToolCalls[0].Error)
	assert.Zero(t, cal.Calls("delete"))
}

func TestChat_MaxTurnsFallsBack(t *testing.T) {
	provider := testutil.NewScriptedProvider(
		testutil.ToolUseTurn("c1", "check_availability", map[string]any{"date": "today"}),
		testutil.ToolUseTurn("c2", "check_availability", map[string]any{"date": "tomorrow"}),
		testutil.ToolUseTurn("c3", "check_availability", map[string]any{"date": "friday"}),
	)
	a, _ := newAgent(t, provider)

	reply, err := a.Chat(context.Background(), []booking.ChatMessage{{Role: "user", Content: "any time this week?"}})
	require.NoError(t, err)
	assert.Len(t, reply.ToolCalls, 3)
	assert.Contains(t, reply.Content, "could not finish")
}

func TestChat_NoUserMessage(t *testing.T) {
	a, _ := newAgent(t, testutil.NewScriptedProvider())

	_, err := a.Chat(context.Background(), []booking.ChatMessage{{Role: "system", Content: "hi"}, {Role: "user", Content: "  "}})
	assert.ErrorIs(t, err, booking.ErrNoUserMessage)
}

func TestChat_ProviderError(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("IsConfigured").Return(true)
	provider.On("Name").Return("mock")
	provider.On("Call", mock.Anything, mock.Anything, mock.Anything).Return(nil, agent.ErrInsufficientCredits)
	a, _ := newAgent(t, provider)

	_, err := a.Chat(context.Background(), []booking.ChatMessage{{Role: "user", Content: "hello"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, agent.ErrInsufficientCredits))
	provider.AssertNumberOfCalls(t, "Call", 1)
}

func TestExecuteTool(t *testing.T) {
	a, _ := newAgent(t, testutil.NewScriptedProvider())

	out, err := a.ExecuteTool(context.Background(), "check_availability", map[string]any{"date": "tomorrow"})
	require.NoError(t, err)
	assert.Contains(t, out, `"date":"2025-08-15"`)

	_, err = a.ExecuteTool(context.Background(), "book_everything", nil)
	assert.ErrorIs(t, err, agent.ErrUnknownTool)
}
