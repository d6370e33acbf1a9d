package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// naive layouts are timestamps without a zone; they are read as UTC
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp accepts RFC3339 as well as zone-less ISO timestamps and always
// holds a UTC instant.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	var lastErr error
	for _, layout := range naiveLayouts {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Field: "timestamp", Message: "timestamp must be a string"}
	}
	if raw == "" {
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return &ValidationError{Field: "timestamp", Message: "invalid timestamp format: " + raw}
	}
	t.Time = parsed
	return nil
}
