package testutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/omriShneor/alfred_booking/internal/agent"
	"github.com/omriShneor/alfred_booking/internal/agent/booking"
	"github.com/omriShneor/alfred_booking/internal/appointment"
	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/normalize"
	"github.com/omriShneor/alfred_booking/internal/server"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
	"github.com/stretchr/testify/require"
)

// TestServer wraps a fully wired server for E2E testing
type TestServer struct {
	Server     *server.Server
	DB         *database.DB
	HTTPServer *httptest.Server
	Service    *appointment.Service
	Assistant  *booking.Agent

	Calendar *FakeCalendar
	Mailer   *RecordingMailer
	Location *time.Location
	Now      time.Time

	provider agent.Provider
	t        *testing.T
}

// TestServerOption configures a test server
type TestServerOption func(*TestServer)

// WithProvider sets the LLM provider behind /api/chat
func WithProvider(p agent.Provider) TestServerOption {
	return func(ts *TestServer) {
		ts.provider = p
	}
}

// WithNow fixes the clock seen by the service and the assistant
func WithNow(now time.Time) TestServerOption {
	return func(ts *TestServer) {
		ts.Now = now
	}
}

// WithoutCalendar leaves the calendar unauthenticated
func WithoutCalendar() TestServerOption {
	return func(ts *TestServer) {
		ts.Calendar.SetAuthenticated(false)
	}
}

// WithoutEmail leaves the mailer unconfigured
func WithoutEmail() TestServerOption {
	return func(ts *TestServer) {
		ts.Mailer.SetConfigured(false)
	}
}

// NewTestServer creates a server over an in-memory calendar, mailer and database.
// The clock defaults to Thursday 2025-08-14 10:00 in the operating zone.
func NewTestServer(t *testing.T, opts ...TestServerOption) *TestServer {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err, "failed to create test database")

	loc, _ := timeutil.ResolveLocation(timeutil.DefaultTimezone)
	ts := &TestServer{
		DB:       db,
		Calendar: NewFakeCalendar(),
		Mailer:   NewRecordingMailer(),
		Location: loc,
		Now:      time.Date(2025, 8, 14, 10, 0, 0, 0, loc),
		t:        t,
	}

	for _, opt := range opts {
		opt(ts)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := ts.Now
	norm := normalize.New(loc, normalize.MonthFirst).WithClock(func() time.Time { return now })

	ts.Service = appointment.NewService(appointment.Options{
		Calendar:   ts.Calendar,
		Mailer:     ts.Mailer,
		Store:      db,
		Normalizer: norm,
		Organizer:  "bookings@example.com",
		Timeout:    time.Second,
		Logger:     logger,
	})

	ts.Assistant, err = booking.NewAgent(booking.Config{
		Provider:   ts.provider,
		Operations: ts.Service,
		Normalizer: norm,
		Logger:     logger,
	})
	require.NoError(t, err, "failed to create assistant")

	ts.Server = server.New(server.ServerConfig{
		DB:        db,
		Service:   ts.Service,
		Assistant: ts.Assistant,
		Mailer:    ts.Mailer,
		Logger:    logger,
	})

	ts.HTTPServer = httptest.NewServer(ts.Server.Handler())

	t.Cleanup(func() {
		ts.HTTPServer.Close()
		db.Close()
	})

	return ts
}

// BaseURL returns the test server base URL
func (ts *TestServer) BaseURL() string {
	return ts.HTTPServer.URL
}

// Client returns an HTTP client configured for the test server
func (ts *TestServer) Client() *http.Client {
	return ts.HTTPServer.Client()
}

// At returns a time on the given August 2025 day in the operating zone
func (ts *TestServer) At(day, hour, minute int) time.Time {
	return time.Date(2025, 8, day, hour, minute, 0, 0, ts.Location)
}
