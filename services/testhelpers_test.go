package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mvavassori/traffic-insights/models"
)

var baseTime = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func at(seconds int) time.Time {
	return baseTime.Add(time.Duration(seconds) * time.Second)
}

func newSeededStore(t *testing.T, events ...models.EventInsert) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	store.now = func() time.Time { return baseTime }
	for _, e := range events {
		_, err := store.Insert(context.Background(), e)
		require.NoError(t, err)
	}
	return store
}

func pageview(session, url string, ts time.Time) models.EventInsert {
	return models.EventInsert{SessionID: session, URL: url, EventType: models.EventTypePageview, Timestamp: ts}
}

func click(session, url string, ts time.Time) models.EventInsert {
	return models.EventInsert{SessionID: session, URL: url, EventType: models.EventTypeClick, Timestamp: ts}
}

var errBroken = errors.New("connection refused")

type failingStore struct{}

func (failingStore) Insert(context.Context, models.EventInsert) (models.Event, error) {
	return models.Event{}, errors.Join(ErrStoreUnavailable, errBroken)
}

func (failingStore) Scan(context.Context, models.EventFilter) ([]models.Event, error) {
	return nil, errors.Join(ErrStoreUnavailable, errBroken)
}

func (failingStore) Ping(context.Context) error {
	return errors.Join(ErrStoreUnavailable, errBroken)
}
