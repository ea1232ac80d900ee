package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/omriShneor/alfred_booking/internal/notify"
)

// RecordingMailer keeps every sent email in memory instead of delivering it
type RecordingMailer struct {
	mu         sync.Mutex
	configured bool
	err        error
	sent       []notify.Email
}

// NewRecordingMailer creates a configured mailer
func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{configured: true}
}

func (m *RecordingMailer) Name() string {
	return "recording"
}

func (m *RecordingMailer) IsConfigured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configured
}

// SetConfigured toggles whether the mailer reports itself configured
func (m *RecordingMailer) SetConfigured(configured bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configured = configured
}

// FailWith makes later sends return err
func (m *RecordingMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *RecordingMailer) Send(_ context.Context, email notify.Email) (*notify.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, email)
	return &notify.Delivery{
		MessageID:  fmt.Sprintf("msg-%d", len(m.sent)),
		StatusCode: http.StatusOK,
	}, nil
}

// Sent returns the emails delivered so far
func (m *RecordingMailer) Sent() []notify.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Email{}, m.sent...)
}

// Last returns the most recent email, if any
func (m *RecordingMailer) Last() (notify.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return notify.Email{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// Reset forgets every recorded email
func (m *RecordingMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}
