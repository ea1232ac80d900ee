package notify

import (
	"fmt"
	"html"
	"strings"
)

const (
	inviteFilename       = "appointment.ics"
	cancellationFilename = "appointment_cancellation.ics"
	calendarContentType  = "text/calendar"
)

// AppointmentDetails are the values shown in appointment emails.
type AppointmentDetails struct {
	ClientName    string
	ClientEmail   string
	Date          string
	Time          string
	Purpose       string
	AppointmentID string
}

// InviteAttachment wraps an iCalendar document. Cancellations get their own filename.
func InviteAttachment(ics string) Attachment {
	filename := inviteFilename
	if strings.Contains(ics, "METHOD:CANCEL") {
		filename = cancellationFilename
	}
	return Attachment{
		Filename:    filename,
		ContentType: calendarContentType,
		Content:     []byte(ics),
	}
}

// ConfirmationEmail builds the message sent after a booking.
func ConfirmationEmail(d AppointmentDetails, ics string) Email {
	body := fmt.Sprintf(`
      <h2>Appointment Confirmation</h2>
      <p>Dear %s,</p>
      <p>Your appointment has been successfully scheduled:</p>
      <p><strong>Date:</strong> %s</p>
      <p><strong>Time:</strong> %s</p>
      <p><strong>Purpose:</strong> %s</p>
      <p><strong>ID:</strong> %s</p>
      <p>📅 A calendar file (.ics) is attached - click it to add to your calendar.</p>
      <p>Save this confirmation for your records. Contact us with your appointment ID for changes.</p>
      <p>We look forward to seeing you!</p>`,
		esc(d.ClientName), esc(d.Date), esc(d.Time), esc(d.Purpose), esc(d.AppointmentID))

	return withInvite(Email{
		To:      d.ClientEmail,
		Subject: fmt.Sprintf("Appointment Confirmation - %s at %s", d.Date, d.Time),
		HTML:    layout(body),
	}, ics)
}

// RescheduledEmail builds the message sent after an appointment moves.
func RescheduledEmail(d AppointmentDetails, oldDate, oldTime, ics string) Email {
	body := fmt.Sprintf(`
      <h2>Appointment Rescheduled</h2>
      <p>Dear %s,</p>
      <p>Your appointment has been successfully rescheduled:</p>
      <p><strong>Previous:</strong> %s at %s</p>
      <p><strong>New:</strong> %s at %s</p>
      <p><strong>Purpose:</strong> %s</p>
      <p>📅 <strong>Updated Calendar Invite:</strong> A new calendar file (.ics) is attached to this email. Click on it to update the appointment in your calendar.</p>
      <p>If you have any questions, please don't hesitate to contact us.</p>`,
		esc(d.ClientName), esc(oldDate), esc(oldTime), esc(d.Date), esc(d.Time), esc(d.Purpose))

	return withInvite(Email{
		To:      d.ClientEmail,
		Subject: fmt.Sprintf("Appointment Rescheduled - %s at %s", d.Date, d.Time),
		HTML:    layout(body),
	}, ics)
}

// CancelledEmail builds the message sent after a cancellation.
func CancelledEmail(d AppointmentDetails, ics string) Email {
	body := fmt.Sprintf(`
      <h2>Appointment Cancelled</h2>
      <p>Dear %s,</p>
      <p>Your appointment has been successfully cancelled:</p>
      <p><strong>Date:</strong> %s</p>
      <p><strong>Time:</strong> %s</p>
      <p><strong>Purpose:</strong> %s</p>
      <p>📅 <strong>Calendar Update:</strong> A cancellation file (.ics) is attached to this email - click on it to remove the appointment from your personal calendar apps (Outlook, Apple Calendar, Google Calendar, etc.).</p>
      <p><strong>🔄 What happens next:</strong></p>
      <ul>
        <li>✅ Removed from our booking system</li>
        <li>✅ Removed from our Google Calendar</li>
        <li>📎 Click the attached .ics file to remove from your personal calendar</li>
      </ul>
      <p>If you need to reschedule or have any questions, please don't hesitate to contact us.</p>`,
		esc(d.ClientName), esc(d.Date), esc(d.Time), esc(d.Purpose))

	return withInvite(Email{
		To:      d.ClientEmail,
		Subject: fmt.Sprintf("Appointment Cancelled - %s at %s", d.Date, d.Time),
		HTML:    layout(body),
	}, ics)
}

func withInvite(email Email, ics string) Email {
	if ics != "" {
		email.Attachments = append(email.Attachments, InviteAttachment(ics))
	}
	return email
}

func layout(body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background-color: white; border-radius: 8px; padding: 24px;">%s
      <p>Best regards,<br>Appointment System</p>
  </div>
</body>
</html>`, body)
}

func esc(s string) string {
	return html.EscapeString(s)
}
