package db

import (
	"database/sql"
	"fmt"
)

const eventsTable = `
	CREATE TABLE IF NOT EXISTS events (
		id %s,
		session_id TEXT NOT NULL,
		url TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		user_agent TEXT,
		traffic_source TEXT,
		device_type TEXT,
		browser TEXT,
		os TEXT,
		country TEXT
	)
`

var eventIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_events_session_id ON events (session_id)",
	"CREATE INDEX IF NOT EXISTS idx_events_url ON events (url)",
	"CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events (timestamp)",
}

// CreateSchema creates the events table and its indexes if they do not exist.
// driver is "postgres" or "sqlite".
func CreateSchema(db *sql.DB, driver string) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	if _, err := db.Exec(fmt.Sprintf(eventsTable, idColumn)); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}
	for _, stmt := range eventIndexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
