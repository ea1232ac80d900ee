package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/resend/resend-go/v2"
)

// ResendMailer sends email via the Resend API
type ResendMailer struct {
	client      *resend.Client
	fromAddress string
	logger      *slog.Logger
}

// NewResendMailer creates a Resend mailer. Without an API key the mailer reports itself unconfigured.
func NewResendMailer(apiKey, from string, logger *slog.Logger) *ResendMailer {
	if logger == nil {
		logger = slog.Default()
	}
	m := &ResendMailer{
		fromAddress: from,
		logger:      logger.With("component", "resend"),
	}
	if apiKey != "" {
		m.client = resend.NewClient(apiKey)
	}
	return m
}

// NewResendMailerWithClient uses a preconfigured client, e.g. one pointed at a test server.
func NewResendMailerWithClient(client *resend.Client, from string, logger *slog.Logger) *ResendMailer {
	m := NewResendMailer("", from, logger)
	m.client = client
	return m
}

// IsConfigured returns true if the mailer has an API key and a sender
func (r *ResendMailer) IsConfigured() bool {
	return r != nil && r.client != nil && r.fromAddress != ""
}

// Name returns the mailer name
func (r *ResendMailer) Name() string {
	return "resend"
}

// Send delivers an email with optional attachments
func (r *ResendMailer) Send(ctx context.Context, email Email) (*Delivery, error) {
	if !r.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if email.To == "" {
		return nil, fmt.Errorf("no recipient specified")
	}

	resp, err := r.client.Emails.SendWithContext(ctx, r.buildSendRequest(email))
	if err != nil {
		r.logger.Warn("email send failed", "recipient", email.To, "subject", email.Subject, "error", err)
		return nil, fmt.Errorf("resend send failed: %w", err)
	}

	r.logger.Info("email sent", "recipient", email.To, "subject", email.Subject, "message_id", resp.Id)
	return &Delivery{MessageID: resp.Id, StatusCode: http.StatusOK}, nil
}

func (r *ResendMailer) buildSendRequest(email Email) *resend.SendEmailRequest {
	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	}

	for _, a := range email.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	return params
}
