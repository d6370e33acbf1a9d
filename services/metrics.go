package services

import (
	"context"
	"sort"
	"time"

	"github.com/mvavassori/traffic-insights/models"
)

const (
	DefaultActiveWindow  = 5 * time.Minute
	DefaultTopPagesLimit = 5
)

// Engine computes the dashboard statistics from the event store. Nothing is
// cached: every call scans the store, so results always reflect the latest
// inserts.
type Engine struct {
	store EventStore

	// Now is the clock used for the active visitor window.
	Now func() time.Time
	// Rules are evaluated in order by PredictPeakHour.
	Rules []Rule
}

func NewEngine(store EventStore) *Engine {
	return &Engine{
		store: store,
		Now:   time.Now,
		Rules: DefaultRules(),
	}
}

// ActiveVisitors counts distinct sessions with at least one event inside the
// trailing window.
func (e *Engine) ActiveVisitors(ctx context.Context, window time.Duration) (int, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{Since: e.Now().UTC().Add(-window)})
	if err != nil {
		return 0, err
	}
	return countSessions(events), nil
}

func (e *Engine) TotalPageviews(ctx context.Context) (int, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{EventType: models.EventTypePageview})
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// AvgSessionDuration is the mean session duration in seconds.
func (e *Engine) AvgSessionDuration(ctx context.Context) (float64, error) {
	sessions, err := e.Sessions(ctx)
	if err != nil {
		return 0, err
	}
	return avgSessionDuration(sessions), nil
}

// BounceRate is the percentage of sessions made of a single event.
func (e *Engine) BounceRate(ctx context.Context) (float64, error) {
	sessions, err := e.Sessions(ctx)
	if err != nil {
		return 0, err
	}
	return bounceRate(sessions), nil
}

func (e *Engine) PageViewsPerSession(ctx context.Context) (float64, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{})
	if err != nil {
		return 0, err
	}
	return pageViewsPerSession(countPageviews(events), countSessions(events)), nil
}

// TrafficSources groups events by referrer. Events without a referrer land
// in the nil bucket; labeling them is left to the presentation layer.
func (e *Engine) TrafficSources(ctx context.Context) ([]models.Stat, error) {
	return e.groupAll(ctx, trafficSourceOf)
}

func (e *Engine) DeviceStats(ctx context.Context) ([]models.Stat, error) {
	return e.groupAll(ctx, deviceTypeOf)
}

func (e *Engine) BrowserStats(ctx context.Context) ([]models.Stat, error) {
	return e.groupAll(ctx, browserOf)
}

func (e *Engine) OSStats(ctx context.Context) ([]models.Stat, error) {
	return e.groupAll(ctx, osOf)
}

func (e *Engine) CountryStats(ctx context.Context) ([]models.Stat, error) {
	return e.groupAll(ctx, countryOf)
}

// TopPages counts pageviews per url, most viewed first. Ties keep the order
// in which the urls were first seen. A limit <= 0 returns every url.
func (e *Engine) TopPages(ctx context.Context, limit int) ([]models.Stat, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{EventType: models.EventTypePageview})
	if err != nil {
		return nil, err
	}
	return topPages(events, limit), nil
}

// Dashboard computes every dashboard metric from a single scan and a single
// session pass.
func (e *Engine) Dashboard(ctx context.Context, window time.Duration) (models.Dashboard, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{})
	if err != nil {
		return models.Dashboard{}, err
	}
	sessions := DeriveSessions(events)
	pageviews := countPageviews(events)

	cutoff := e.Now().UTC().Add(-window)
	active := make(map[string]struct{})
	for _, ev := range events {
		if !ev.Timestamp.Before(cutoff) {
			active[ev.SessionID] = struct{}{}
		}
	}

	return models.Dashboard{
		ActiveVisitors:      len(active),
		TotalPageviews:      pageviews,
		AvgSessionDuration:  avgSessionDuration(sessions),
		BounceRate:          bounceRate(sessions),
		PageViewsPerSession: pageViewsPerSession(pageviews, len(sessions)),
	}, nil
}

// Charts computes every grouped breakdown from a single scan.
func (e *Engine) Charts(ctx context.Context, topPagesLimit int) (models.Charts, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{})
	if err != nil {
		return models.Charts{}, err
	}

	var pageviews []models.Event
	for _, ev := range events {
		if ev.EventType == models.EventTypePageview {
			pageviews = append(pageviews, ev)
		}
	}

	return models.Charts{
		TrafficSources: groupBy(events, trafficSourceOf),
		Devices:        groupBy(events, deviceTypeOf),
		Browsers:       groupBy(events, browserOf),
		OSes:           groupBy(events, osOf),
		Countries:      groupBy(events, countryOf),
		TopPages:       topPages(pageviews, topPagesLimit),
	}, nil
}

func (e *Engine) groupAll(ctx context.Context, key func(models.Event) *string) ([]models.Stat, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{})
	if err != nil {
		return nil, err
	}
	return groupBy(events, key), nil
}

func countPageviews(events []models.Event) int {
	n := 0
	for _, e := range events {
		if e.EventType == models.EventTypePageview {
			n++
		}
	}
	return n
}

func countSessions(events []models.Event) int {
	seen := make(map[string]struct{})
	for _, e := range events {
		seen[e.SessionID] = struct{}{}
	}
	return len(seen)
}

func avgSessionDuration(sessions map[string]models.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var total float64
	for _, s := range sessions {
		total += s.Duration().Seconds()
	}
	return total / float64(len(sessions))
}

func bounceRate(sessions map[string]models.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	bounced := 0
	for _, s := range sessions {
		if s.Bounced() {
			bounced++
		}
	}
	return float64(bounced) / float64(len(sessions)) * 100
}

func pageViewsPerSession(pageviews, sessions int) float64 {
	if sessions == 0 {
		return 0
	}
	return float64(pageviews) / float64(sessions)
}

func topPages(pageviews []models.Event, limit int) []models.Stat {
	stats := groupBy(pageviews, func(e models.Event) *string { return &e.URL })
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

type groupKey struct {
	present bool
	value   string
}

// groupBy counts events per key, highest count first. Equal counts keep
// first-seen order, which is id order since scans are ordered by id.
func groupBy(events []models.Event, key func(models.Event) *string) []models.Stat {
	index := make(map[groupKey]int)
	stats := []models.Stat{}
	for _, e := range events {
		name := key(e)
		k := groupKey{}
		if name != nil {
			k = groupKey{present: true, value: *name}
		}
		i, ok := index[k]
		if !ok {
			i = len(stats)
			index[k] = i
			var stored *string
			if k.present {
				v := k.value
				stored = &v
			}
			stats = append(stats, models.Stat{Name: stored})
		}
		stats[i].Value++
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Value > stats[j].Value
	})
	return stats
}

func trafficSourceOf(e models.Event) *string { return e.TrafficSource }
func deviceTypeOf(e models.Event) *string { return e.DeviceType }
func browserOf(e models.Event) *string { return e.Browser }
func osOf(e models.Event) *string { return e.OS }
func countryOf(e models.Event) *string { return e.Country }
