package models

import "fmt"

// ValidationError reports a missing or malformed field on ingest.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid field %s", e.Field)
}
