package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "appointments",
		Up:      appointments,
	})
}

func appointments(db *sql.DB) error {
	return execAll(db, []string{
		`CREATE TABLE IF NOT EXISTS appointments (
			event_id TEXT PRIMARY KEY,
			appointment_id TEXT NOT NULL,
			client_name TEXT NOT NULL DEFAULT '',
			client_email TEXT NOT NULL DEFAULT '',
			purpose TEXT NOT NULL DEFAULT '',
			start_time DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled' CHECK(status IN ('scheduled', 'cancelled')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_client_email ON appointments(client_email COLLATE NOCASE)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_start_time ON appointments(start_time)`,
	})
}
