package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Well-known event types sent by the tracker. The set is open: any non-empty
// type is accepted and stored as-is.
const (
	EventTypePageview     = "pageview"
	EventTypeClick        = "click"
	EventTypeSessionStart = "session_start"
	EventTypeSessionEnd   = "session_end"
)

// Event is a stored tracking event. It is never modified after insert.
type Event struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id"`
	URL           string    `json:"url"`
	EventType     string    `json:"event_type"`
	Timestamp     time.Time `json:"timestamp"`
	UserAgent     *string   `json:"user_agent"`
	TrafficSource *string   `json:"traffic_source"`
	DeviceType    *string   `json:"device_type"`
	Browser       *string   `json:"browser"`
	OS            *string   `json:"os"`
	Country       *string   `json:"country"`
}

// MarshalJSON also emits the traffic source under "referrer" so the stored
// form mirrors the payload the tracker sent.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		alias
		Referrer *string `json:"referrer"`
	}{alias: alias(e), Referrer: e.TrafficSource})
}

// EventReceiver holds the request body of POST /api/track.
type EventReceiver struct {
	SessionID string     `json:"session_id"`
	URL       string     `json:"url"`
	EventType string     `json:"event_type"`
	Timestamp *Timestamp `json:"timestamp"`
	Referrer  *string    `json:"referrer"`
	UserAgent *string    `json:"user_agent"`
}

func (e *EventReceiver) Validate() error {
	if strings.TrimSpace(e.SessionID) == "" {
		return &ValidationError{Field: "session_id", Message: "session_id is required"}
	}
	if strings.TrimSpace(e.URL) == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	if strings.TrimSpace(e.EventType) == "" {
		return &ValidationError{Field: "event_type", Message: "event_type is required"}
	}
	return nil
}

// EventInsert is what the store persists. Derived fields are resolved by the
// caller before insert; the store never parses user agents itself.
type EventInsert struct {
	SessionID     string
	URL           string
	EventType     string
	Timestamp     time.Time // zero means "now" at insert time
	UserAgent     *string
	TrafficSource *string
	DeviceType    *string
	Browser       *string
	OS            *string
	Country       *string
}

func (e *EventInsert) Validate() error {
	receiver := EventReceiver{SessionID: e.SessionID, URL: e.URL, EventType: e.EventType}
	return receiver.Validate()
}

// EventFilter narrows a store scan. Zero values match everything.
type EventFilter struct {
	EventType string
	Since     time.Time
}

func (f EventFilter) Matches(e Event) bool {
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// StringPtr returns nil for blank strings.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
