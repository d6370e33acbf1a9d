package services

import (
	"context"
	"errors"

	"github.com/mvavassori/traffic-insights/models"
)

// ErrStoreUnavailable wraps every persistence failure so callers can tell it
// apart from validation errors.
var ErrStoreUnavailable = errors.New("event store unavailable")

// EventStore is the append-only event log the metrics are computed from.
type EventStore interface {
	// Insert assigns an id, defaults the timestamp to now and persists the
	// event.
	Insert(ctx context.Context, event models.EventInsert) (models.Event, error)
	// Scan returns every event matching filter, ordered by id.
	Scan(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	Ping(ctx context.Context) error
}
