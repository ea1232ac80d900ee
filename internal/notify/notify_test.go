package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func details() AppointmentDetails {
	return AppointmentDetails{
		ClientName:    "Jane <Doe>",
		ClientEmail:   "jane@example.com",
		Date:          "2025-08-15",
		Time:          "15:00",
		Purpose:       "Checkup",
		AppointmentID: "evt-1",
	}
}

func TestInviteAttachment(t *testing.T) {
	a := InviteAttachment("BEGIN:VCALENDAR\r\nMETHOD:REQUEST\r\nEND:VCALENDAR")
	assert.Equal(t, "appointment.ics", a.Filename)
	assert.Equal(t, "text/calendar", a.ContentType)

	a = InviteAttachment("BEGIN:VCALENDAR\r\nMETHOD:CANCEL\r\nEND:VCALENDAR")
	assert.Equal(t, "appointment_cancellation.ics", a.Filename)
}

func TestConfirmationEmail(t *testing.T) {
	email := ConfirmationEmail(details(), "METHOD:REQUEST")

	assert.Equal(t, "jane@example.com", email.To)
	assert.Equal(t, "Appointment Confirmation - 2025-08-15 at 15:00", email.Subject)
	assert.Contains(t, email.HTML, "Jane &lt;Doe&gt;")
	assert.Contains(t, email.HTML, "<strong>ID:</strong> evt-1")
	require.Len(t, email.Attachments, 1)
}

func TestRescheduledEmail(t *testing.T) {
	email := RescheduledEmail(details(), "2025-08-14", "10:00", "")

	assert.Equal(t, "Appointment Rescheduled - 2025-08-15 at 15:00", email.Subject)
	assert.Contains(t, email.HTML, "<strong>Previous:</strong> 2025-08-14 at 10:00")
	assert.Empty(t, email.Attachments)
}

func TestCancelledEmail(t *testing.T) {
	email := CancelledEmail(details(), "METHOD:CANCEL")

	assert.Equal(t, "Appointment Cancelled - 2025-08-15 at 15:00", email.Subject)
	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "appointment_cancellation.ics", email.Attachments[0].Filename)
}

func TestResendMailer_NotConfigured(t *testing.T) {
	m := NewResendMailer("", "clinic@example.com", nil)
	assert.False(t, m.IsConfigured())

	_, err := m.Send(context.Background(), Email{To: "jane@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	m = NewResendMailer("re_key", "", nil)
	assert.False(t, m.IsConfigured())
}

func TestResendMailer_BuildSendRequest(t *testing.T) {
	m := NewResendMailer("re_key", "clinic@example.com", nil)

	req := m.buildSendRequest(ConfirmationEmail(details(), "METHOD:REQUEST"))

	assert.Equal(t, "clinic@example.com", req.From)
	assert.Equal(t, []string{"jane@example.com"}, req.To)
	require.Len(t, req.Attachments, 1)
	assert.Equal(t, "appointment.ics", req.Attachments[0].Filename)
	assert.Equal(t, "text/calendar", req.Attachments[0].ContentType)
	assert.Equal(t, []byte("METHOD:REQUEST"), req.Attachments[0].Content)
}

func TestResendMailer_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-42"}`))
	}))
	defer srv.Close()

	client := resend.NewClient("re_key")
	client.BaseURL, _ = url.Parse(srv.URL)
	m := NewResendMailerWithClient(client, "clinic@example.com", nil)

	delivery, err := m.Send(context.Background(), Email{To: "jane@example.com", Subject: "Hello", HTML: "<p>Hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "msg-42", delivery.MessageID)
	assert.Equal(t, http.StatusOK, delivery.StatusCode)
	assert.Equal(t, "Hello", got["subject"])
}
