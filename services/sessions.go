package services

import (
	"context"

	"github.com/mvavassori/traffic-insights/models"
)

// DeriveSessions groups events by session id and reduces each group to its
// first and last timestamp and its event count.
func DeriveSessions(events []models.Event) map[string]models.Session {
	sessions := make(map[string]models.Session)
	for _, e := range events {
		s, ok := sessions[e.SessionID]
		if !ok {
			sessions[e.SessionID] = models.Session{
				ID:         e.SessionID,
				Start:      e.Timestamp,
				End:        e.Timestamp,
				EventCount: 1,
			}
			continue
		}
		if e.Timestamp.Before(s.Start) {
			s.Start = e.Timestamp
		}
		if e.Timestamp.After(s.End) {
			s.End = e.Timestamp
		}
		s.EventCount++
		sessions[e.SessionID] = s
	}
	return sessions
}

// Sessions derives the sessions from the current contents of the store.
func (e *Engine) Sessions(ctx context.Context) (map[string]models.Session, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{})
	if err != nil {
		return nil, err
	}
	return DeriveSessions(events), nil
}
