package models

import "time"

// Session is derived from the events that share a session id. It is never
// persisted.
type Session struct {
	ID         string    `json:"session_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	EventCount int       `json:"event_count"`
}

// Duration is the span between the first and last event of the session.
func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Bounced reports whether the session contains exactly one event.
func (s Session) Bounced() bool {
	return s.EventCount == 1
}
