package notify

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the mailer has no API key or sender address.
var ErrNotConfigured = errors.New("email service not configured")

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Email is a single outgoing HTML message.
type Email struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Delivery describes an accepted message.
type Delivery struct {
	MessageID  string
	StatusCode int
}

// Mailer sends transactional email
type Mailer interface {
	// Send delivers the email or returns the provider error
	Send(ctx context.Context, email Email) (*Delivery, error)
	// Name returns the mailer type name (for logging)
	Name() string
	// IsConfigured returns true if the mailer has server-side config
	IsConfigured() bool
}
