package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/http"
	"net/textproto"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/omriShneor/alfred_booking/internal/notify"
)

// SendScope must be granted to the calendar OAuth token for the mailer to work.
const SendScope = gmail.GmailSendScope

// ClientSource supplies HTTP clients authorized for the connected Google account.
type ClientSource interface {
	HasUserToken() bool
	OAuthHTTPClient(ctx context.Context) (*http.Client, error)
}

// Mailer sends email through the Gmail API as the connected Google account.
// It shares the OAuth token obtained when connecting Google Calendar.
type Mailer struct {
	source      ClientSource
	fromAddress string
	opts        []option.ClientOption
	logger      *slog.Logger
}

// NewMailer creates a Gmail mailer. Extra client options are applied after the
// authorized HTTP client, e.g. option.WithEndpoint in tests.
func NewMailer(source ClientSource, from string, logger *slog.Logger, opts ...option.ClientOption) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		source:      source,
		fromAddress: from,
		opts:        opts,
		logger:      logger.With("component", "gmail"),
	}
}

// IsConfigured returns true once a user token exists and a sender is set
func (m *Mailer) IsConfigured() bool {
	return m != nil && m.source != nil && m.fromAddress != "" && m.source.HasUserToken()
}

// Name returns the mailer name
func (m *Mailer) Name() string {
	return "gmail"
}

// Send delivers the email via users.messages.send
func (m *Mailer) Send(ctx context.Context, email notify.Email) (*notify.Delivery, error) {
	if !m.IsConfigured() {
		return nil, notify.ErrNotConfigured
	}
	if email.To == "" {
		return nil, fmt.Errorf("no recipient specified")
	}

	httpClient, err := m.source.OAuthHTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gmail http client: %w", err)
	}
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, m.opts...)
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	raw, err := buildMessage(m.fromAddress, email)
	if err != nil {
		return nil, err
	}

	sent, err := service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		m.logger.Warn("email send failed", "recipient", email.To, "subject", email.Subject, "error", err)
		return nil, fmt.Errorf("gmail send failed: %w", err)
	}

	m.logger.Info("email sent", "recipient", email.To, "subject", email.Subject, "message_id", sent.Id)
	return &notify.Delivery{MessageID: sent.Id, StatusCode: sent.HTTPStatusCode}, nil
}

// buildMessage renders an RFC 2822 message: an HTML body followed by the attachments.
func buildMessage(from string, email notify.Email) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", email.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create html part: %w", err)
	}
	qp := quotedprintable.NewWriter(htmlPart)
	if _, err := qp.Write([]byte(email.HTML)); err != nil {
		return nil, fmt.Errorf("failed to write html part: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write html part: %w", err)
	}

	for _, a := range email.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": a.Filename})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := part.Write([]byte(wrapBase64(a.Content))); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", a.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapBase64 encodes content in 76-column lines.
func wrapBase64(content []byte) string {
	encoded := base64.StdEncoding.EncodeToString(content)
	var sb strings.Builder
	for len(encoded) > 76 {
		sb.WriteString(encoded[:76])
		sb.WriteString("\r\n")
		encoded = encoded[76:]
	}
	sb.WriteString(encoded)
	sb.WriteString("\r\n")
	return sb.String()
}
