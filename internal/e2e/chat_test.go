package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/omriShneor/alfred_booking/internal/agent"
	"github.com/omriShneor/alfred_booking/internal/agent/booking"
	"github.com/omriShneor/alfred_booking/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postChat(t *testing.T, ts *testutil.TestServer, history []booking.ChatMessage) (*http.Response, booking.Reply) {
	t.Helper()
	body, err := json.Marshal(history)
	require.NoError(t, err)

	resp, err := http.Post(ts.BaseURL()+"/api/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply booking.Reply
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	}
	return resp, reply
}

func TestChatBooksAppointment(t *testing.T) {
	provider := testutil.NewScriptedProvider(
		testutil.ToolUseTurn("call_1", "check_availability", map[string]any{"date": "tomorrow"}),
		testutil.ToolUseTurn("call_2", "schedule_appointment", map[string]any{
			"date":         "tomorrow",
			"time":         "3 PM",
			"purpose":      "Consultation",
			"client_name":  "Meera Shah",
			"client_email": "meera@example.com",
		}),
		testutil.TextTurn("You're booked for 2025-08-15 at 15:00. A confirmation is on its way."),
	)
	ts := testutil.NewTestServer(t, testutil.WithProvider(provider))

	resp, reply := postChat(t, ts, []booking.ChatMessage{
		{Role: "system", Content: "Reply in one sentence."},
		{Role: "user", Content: "Book me a consultation tomorrow at 3pm. I'm Meera Shah, meera@example.com"},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "assistant", reply.Role)
	assert.Contains(t, reply.Content, "15:00")
	require.Len(t, reply.ToolCalls, 2)
	assert.Equal(t, "check_availability", reply.ToolCalls[0].Name)
	assert.Equal(t, "schedule_appointment", reply.ToolCalls[1].Name)
	assert.Empty(t, reply.ToolCalls[1].Error)
	assert.Contains(t, reply.ToolCalls[1].Output, `"success":true`)

	events := ts.Calendar.GetEvents()
	require.Len(t, events, 1)
	assert.True(t, ts.At(15, 15, 0).Equal(events[0].Start))
	assert.Len(t, ts.Mailer.Sent(), 1)

	systems := provider.Systems()
	require.NotEmpty(t, systems)
	assert.Contains(t, systems[0], "2025-08-14")
	assert.Contains(t, systems[0], "Reply in one sentence.")

	// The schedule result reaches the model as a tool result on the third call.
	requests := provider.Requests()
	require.Len(t, requests, 3)
	last := requests[2][len(requests[2])-1]
	assert.Equal(t, agent.RoleUser, last.Role)
}

func TestChatToolInputError(t *testing.T) {
	provider := testutil.NewScriptedProvider(
		testutil.ToolUseTurn("call_1", "cancel_appointment", map[string]any{"client_email": "a@example.com"}),
		testutil.TextTurn("Which date and time should I cancel?"),
	)
	ts := testutil.NewTestServer(t, testutil.WithProvider(provider))

	resp, reply := postChat(t, ts, []booking.ChatMessage{{Role: "user", Content: "cancel my appointment"}})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "date is required", reply.ToolCalls[0].Error)
	assert.Equal(t, "Which date and time should I cancel?", reply.Content)
}

func TestChatWithoutProvider(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, _ := postChat(t, ts, []booking.ChatMessage{{Role: "user", Content: "hello"}})

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
