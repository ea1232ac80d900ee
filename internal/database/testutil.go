package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CreateTestAppointment stores a scheduled appointment for the given event id.
func CreateTestAppointment(t *testing.T, db *DB, eventID, clientEmail string, start time.Time) *Appointment {
	t.Helper()

	appt := &Appointment{
		EventID:       eventID,
		AppointmentID: eventID,
		ClientName:    "Test Client",
		ClientEmail:   clientEmail,
		Purpose:       "Consultation",
		StartTime:     start,
	}
	require.NoError(t, db.UpsertAppointment(appt), "failed to create test appointment")

	return appt
}
