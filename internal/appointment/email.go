package appointment

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/omriShneor/alfred_booking/internal/invite"
	"github.com/omriShneor/alfred_booking/internal/notify"
)

// SendEmail sends a plain HTML message without attachments.
func (s *Service) SendEmail(ctx context.Context, to, subject, body string) *EmailResult {
	return s.deliver(ctx, notify.Email{
		To:      strings.TrimSpace(to),
		Subject: subject,
		HTML:    body,
	})
}

func (s *Service) sendConfirmation(ctx context.Context, details notify.AppointmentDetails, start time.Time) *EmailResult {
	ics := s.buildInvite(details, start, invite.StatusConfirmed)
	return s.deliver(ctx, notify.ConfirmationEmail(details, ics))
}

// buildInvite renders the attachment; failures are logged and the email goes out without it.
func (s *Service) buildInvite(details notify.AppointmentDetails, start time.Time, status invite.Status) string {
	ics, err := invite.Build(invite.Invite{
		AppointmentID: details.AppointmentID,
		ClientName:    details.ClientName,
		ClientEmail:   details.ClientEmail,
		Purpose:       details.Purpose,
		Start:         start,
		Duration:      Duration,
		Organizer:     s.organizer,
		Status:        status,
		Stamp:         s.norm.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to build calendar invite", "appointment_id", details.AppointmentID, "error", err)
		return ""
	}
	return ics
}

func (s *Service) deliver(ctx context.Context, email notify.Email) *EmailResult {
	res := &EmailResult{Recipient: email.To, Subject: email.Subject}

	if !s.EmailConfigured() {
		res.Error = MsgEmailNotConfigured
		return res
	}

	callCtx, cancel := s.callCtx(ctx)
	defer cancel()

	delivery, err := s.mailer.Send(callCtx, email)
	if err != nil {
		s.logger.Warn("failed to send email", "recipient", email.To, "subject", email.Subject, "error", err)
		res.Error = err.Error()
		return res
	}

	res.Success = true
	res.StatusCode = http.StatusOK
	if delivery != nil {
		res.MessageID = delivery.MessageID
		if delivery.StatusCode != 0 {
			res.StatusCode = delivery.StatusCode
		}
	}
	return res
}
