package services

import (
	"context"
	"sync"
	"time"

	"github.com/mvavassori/traffic-insights/models"
)

// MemoryStore is an EventStore held in process memory. Readers share a read
// lock and copy the matching events, so a scan is a snapshot.
type MemoryStore struct {
	mu     sync.RWMutex
	events []models.Event
	nextID int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, now: time.Now}
}

func (s *MemoryStore) Insert(_ context.Context, in models.EventInsert) (models.Event, error) {
	if err := in.Validate(); err != nil {
		return models.Event{}, err
	}

	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = s.now()
	}

	event := models.Event{
		SessionID:     in.SessionID,
		URL:           in.URL,
		EventType:     in.EventType,
		Timestamp:     timestamp.UTC(),
		UserAgent:     cloneString(in.UserAgent),
		TrafficSource: cloneString(in.TrafficSource),
		DeviceType:    cloneString(in.DeviceType),
		Browser:       cloneString(in.Browser),
		OS:            cloneString(in.OS),
		Country:       cloneString(in.Country),
	}

	s.mu.Lock()
	event.ID = s.nextID
	s.nextID++
	s.events = append(s.events, event)
	s.mu.Unlock()

	return event, nil
}

func (s *MemoryStore) Scan(_ context.Context, filter models.EventFilter) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []models.Event
	for _, e := range s.events {
		if filter.Matches(e) {
			events = append(events, e)
		}
	}
	return events, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
