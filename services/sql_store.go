package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mvavassori/traffic-insights/models"
)

const eventColumns = "id, session_id, url, event_type, timestamp, user_agent, traffic_source, device_type, browser, os, country"

// SQLStore keeps events in the events table of a Postgres or SQLite database.
// Both drivers accept $N placeholders and INSERT ... RETURNING.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Insert(ctx context.Context, in models.EventInsert) (models.Event, error) {
	if err := in.Validate(); err != nil {
		return models.Event{}, err
	}

	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = s.now()
	}
	timestamp = timestamp.UTC()

	insertQuery := `
		INSERT INTO events
			(session_id, url, event_type, timestamp, user_agent, traffic_source, device_type, browser, os, country)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, insertQuery,
		in.SessionID,
		in.URL,
		in.EventType,
		timestamp,
		in.UserAgent,
		in.TrafficSource,
		in.DeviceType,
		in.Browser,
		in.OS,
		in.Country,
	).Scan(&id)
	if err != nil {
		return models.Event{}, fmt.Errorf("%w: inserting event: %w", ErrStoreUnavailable, err)
	}

	return models.Event{
		ID:            id,
		SessionID:     in.SessionID,
		URL:           in.URL,
		EventType:     in.EventType,
		Timestamp:     timestamp,
		UserAgent:     in.UserAgent,
		TrafficSource: in.TrafficSource,
		DeviceType:    in.DeviceType,
		Browser:       in.Browser,
		OS:            in.OS,
		Country:       in.Country,
	}, nil
}

func (s *SQLStore) Scan(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var conditions []string
	var args []any
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since.UTC())
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", len(args)))
	}

	query := "SELECT " + eventColumns + " FROM events"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying events: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(&e.ID, &e.SessionID, &e.URL, &e.EventType, &e.Timestamp,
			&e.UserAgent, &e.TrafficSource, &e.DeviceType, &e.Browser, &e.OS, &e.Country)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning event: %w", ErrStoreUnavailable, err)
		}
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating events: %w", ErrStoreUnavailable, err)
	}

	return events, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
