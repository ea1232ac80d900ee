package database

import (
	"database/sql"
	"fmt"
	"time"
)

// AppointmentStatus tracks whether the calendar event still exists
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// History actions
const (
	HistoryActionScheduled   = "scheduled"
	HistoryActionModified    = "modified"
	HistoryActionRescheduled = "rescheduled"
	HistoryActionCancelled   = "cancelled"
)

// Appointment is the structured record kept next to a calendar event
type Appointment struct {
	EventID       string            `json:"event_id"`
	AppointmentID string            `json:"appointment_id"`
	ClientName    string            `json:"client_name"`
	ClientEmail   string            `json:"client_email"`
	Purpose       string            `json:"purpose"`
	StartTime     time.Time         `json:"start_time"`
	Status        AppointmentStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// HistoryEntry is one audit row for an appointment
type HistoryEntry struct {
	ID        int64     `json:"id"`
	EventID   string    `json:"event_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertAppointment inserts or replaces the record for an event
func (d *DB) UpsertAppointment(a *Appointment) error {
	if a.EventID == "" {
		return fmt.Errorf("event id is required")
	}
	if a.Status == "" {
		a.Status = AppointmentStatusScheduled
	}

	_, err := d.Exec(`
		INSERT INTO appointments (event_id, appointment_id, client_name, client_email, purpose, start_time, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			appointment_id = excluded.appointment_id,
			client_name = excluded.client_name,
			client_email = excluded.client_email,
			purpose = excluded.purpose,
			start_time = excluded.start_time,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, a.EventID, a.AppointmentID, a.ClientName, a.ClientEmail, a.Purpose, a.StartTime.UTC(), a.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert appointment: %w", err)
	}
	return nil
}

// GetAppointment returns the record for an event, or nil if none exists
func (d *DB) GetAppointment(eventID string) (*Appointment, error) {
	var a Appointment
	err := d.QueryRow(`
		SELECT event_id, appointment_id, client_name, client_email, purpose, start_time, status, created_at, updated_at
		FROM appointments
		WHERE event_id = ?
	`, eventID).Scan(
		&a.EventID, &a.AppointmentID, &a.ClientName, &a.ClientEmail, &a.Purpose,
		&a.StartTime, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &a, nil
}

// ListAppointmentsByEmail returns a client's records ordered by start time
func (d *DB) ListAppointmentsByEmail(email string) ([]Appointment, error) {
	rows, err := d.Query(`
		SELECT event_id, appointment_id, client_name, client_email, purpose, start_time, status, created_at, updated_at
		FROM appointments
		WHERE client_email = ? COLLATE NOCASE
		ORDER BY start_time ASC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.EventID, &a.AppointmentID, &a.ClientName, &a.ClientEmail, &a.Purpose,
			&a.StartTime, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// UpdateAppointmentStart moves the stored start time of an event
func (d *DB) UpdateAppointmentStart(eventID string, start time.Time) error {
	_, err := d.Exec(`
		UPDATE appointments SET start_time = ?, updated_at = CURRENT_TIMESTAMP WHERE event_id = ?
	`, start.UTC(), eventID)
	if err != nil {
		return fmt.Errorf("failed to update appointment start: %w", err)
	}
	return nil
}

// MarkAppointmentCancelled flags the record of a deleted event
func (d *DB) MarkAppointmentCancelled(eventID string) error {
	_, err := d.Exec(`
		UPDATE appointments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE event_id = ?
	`, AppointmentStatusCancelled, eventID)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return nil
}

// AddAppointmentHistory appends an audit entry
func (d *DB) AddAppointmentHistory(eventID, action, detail string) error {
	_, err := d.Exec(`
		INSERT INTO appointment_history (event_id, action, detail) VALUES (?, ?, ?)
	`, eventID, action, detail)
	if err != nil {
		return fmt.Errorf("failed to add appointment history: %w", err)
	}
	return nil
}

// GetAppointmentHistory returns audit entries oldest first
func (d *DB) GetAppointmentHistory(eventID string) ([]HistoryEntry, error) {
	rows, err := d.Query(`
		SELECT id, event_id, action, detail, created_at
		FROM appointment_history
		WHERE event_id = ?
		ORDER BY id ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.EventID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
