package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "appointment_history",
		Up:      appointmentHistory,
	})
}

// History rows outlive the appointment row, so there is no foreign key.
func appointmentHistory(db *sql.DB) error {
	return execAll(db, []string{
		`CREATE TABLE IF NOT EXISTS appointment_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			action TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointment_history_event ON appointment_history(event_id, id)`,
	})
}
