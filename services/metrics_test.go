package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvavassori/traffic-insights/models"
)

func newTestEngine(store EventStore) *Engine {
	engine := NewEngine(store)
	engine.Now = func() time.Time { return at(600) }
	return engine
}

func statNames(stats []models.Stat) []string {
	names := make([]string, 0, len(stats))
	for _, s := range stats {
		if s.Name == nil {
			names = append(names, "<nil>")
			continue
		}
		names = append(names, *s.Name)
	}
	return names
}

func statValues(stats []models.Stat) []int {
	values := make([]int, 0, len(stats))
	for _, s := range stats {
		values = append(values, s.Value)
	}
	return values
}

func TestEngine_EmptyStore(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(newSeededStore(t))

	active, err := engine.ActiveVisitors(ctx, DefaultActiveWindow)
	require.NoError(t, err)
	assert.Zero(t, active)

	total, err := engine.TotalPageviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	avg, err := engine.AvgSessionDuration(ctx)
	require.NoError(t, err)
	assert.Zero(t, avg)

	bounce, err := engine.BounceRate(ctx)
	require.NoError(t, err)
	assert.Zero(t, bounce)

	perSession, err := engine.PageViewsPerSession(ctx)
	require.NoError(t, err)
	assert.Zero(t, perSession)

	top, err := engine.TopPages(ctx, DefaultTopPagesLimit)
	require.NoError(t, err)
	assert.Empty(t, top)

	charts, err := engine.Charts(ctx, DefaultTopPagesLimit)
	require.NoError(t, err)
	assert.Empty(t, charts.TrafficSources)
	assert.Empty(t, charts.Devices)
	assert.Empty(t, charts.Browsers)
	assert.Empty(t, charts.TopPages)

	dashboard, err := engine.Dashboard(ctx, DefaultActiveWindow)
	require.NoError(t, err)
	assert.Equal(t, models.Dashboard{}, dashboard)
}

func TestEngine_SessionScenario(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(newSeededStore(t,
		pageview("A", "/", at(0)),
		click("A", "/", at(1)),
		pageview("A", "/docs", at(2)),
		pageview("B", "/", at(5)),
	))

	bounce, err := engine.BounceRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, bounce)

	avg, err := engine.AvgSessionDuration(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)

	perSession, err := engine.PageViewsPerSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.5, perSession)

	total, err := engine.TotalPageviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestEngine_BounceRateCountsSingleEventSessions(t *testing.T) {
	engine := newTestEngine(newSeededStore(t,
		pageview("A", "/", at(0)),
		pageview("B", "/", at(1)),
		click("C", "/", at(2)),
		pageview("D", "/", at(3)),
		pageview("D", "/docs", at(4)),
		pageview("E", "/", at(5)),
		click("E", "/", at(6)),
	))

	bounce, err := engine.BounceRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 60.0, bounce, 1e-9)
}

func TestEngine_ActiveVisitorsWindow(t *testing.T) {
	ctx := context.Background()
	// engine clock sits at at(600); the 5 minute window starts at at(300)
	engine := newTestEngine(newSeededStore(t,
		pageview("old", "/", at(0)),
		pageview("edge", "/", at(300)),
		pageview("recent", "/", at(500)),
		click("recent", "/", at(550)),
		pageview("returning", "/", at(10)),
		click("returning", "/", at(590)),
	))

	active, err := engine.ActiveVisitors(ctx, DefaultActiveWindow)
	require.NoError(t, err)
	assert.Equal(t, 3, active)

	active, err = engine.ActiveVisitors(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	dashboard, err := engine.Dashboard(ctx, DefaultActiveWindow)
	require.NoError(t, err)
	assert.Equal(t, 3, dashboard.ActiveVisitors)
}

func TestEngine_InsertThenRead(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, pageview("A", "/", at(0)), pageview("A", "/", at(1)))
	engine := newTestEngine(store)

	before, err := engine.TotalPageviews(ctx)
	require.NoError(t, err)

	_, err = store.Insert(ctx, pageview("B", "/new", at(2)))
	require.NoError(t, err)

	after, err := engine.TotalPageviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	top, err := engine.TopPages(ctx, DefaultTopPagesLimit)
	require.NoError(t, err)
	assert.Contains(t, statNames(top), "/new")
}

func TestEngine_Idempotent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(newSeededStore(t,
		pageview("A", "/", at(0)),
		click("A", "/", at(40)),
		pageview("B", "/docs", at(100)),
	))

	first, err := engine.Dashboard(ctx, DefaultActiveWindow)
	require.NoError(t, err)
	second, err := engine.Dashboard(ctx, DefaultActiveWindow)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	firstCharts, err := engine.Charts(ctx, DefaultTopPagesLimit)
	require.NoError(t, err)
	secondCharts, err := engine.Charts(ctx, DefaultTopPagesLimit)
	require.NoError(t, err)
	assert.Equal(t, firstCharts, secondCharts)
}

func TestEngine_DashboardMatchesIndividualMetrics(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(newSeededStore(t,
		pageview("A", "/", at(0)),
		click("A", "/", at(45)),
		pageview("A", "/docs", at(400)),
		pageview("B", "/", at(350)),
		pageview("C", "/pricing", at(20)),
		click("C", "/pricing", at(21)),
	))

	dashboard, err := engine.Dashboard(ctx, DefaultActiveWindow)
	require.NoError(t, err)

	active, _ := engine.ActiveVisitors(ctx, DefaultActiveWindow)
	total, _ := engine.TotalPageviews(ctx)
	avg, _ := engine.AvgSessionDuration(ctx)
	bounce, _ := engine.BounceRate(ctx)
	perSession, _ := engine.PageViewsPerSession(ctx)

	assert.Equal(t, models.Dashboard{
		ActiveVisitors:      active,
		TotalPageviews:      total,
		AvgSessionDuration:  avg,
		BounceRate:          bounce,
		PageViewsPerSession: perSession,
	}, dashboard)
}

func TestEngine_TopPagesOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(newSeededStore(t,
		pageview("A", "/b", at(0)),
		pageview("A", "/a", at(1)),
		pageview("B", "/c", at(2)),
		pageview("B", "/c", at(3)),
		click("B", "/d", at(4)),
		click("B", "/d", at(5)),
		click("B", "/d", at(6)),
		pageview("C", "/a", at(7)),
		pageview("C", "/e", at(8)),
	))

	top, err := engine.TopPages(ctx, 5)
	require.NoError(t, err)
	// /a and /c tie on 2: /a was seen first. /b and /e tie on 1: /b first.
	assert.Equal(t, []string{"/a", "/c", "/b", "/e"}, statNames(top))
	assert.Equal(t, []int{2, 2, 1, 1}, statValues(top))

	top, err = engine.TopPages(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/c"}, statNames(top))

	top, err = engine.TopPages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, 4)
}

func TestEngine_GroupedStatsKeepNilBucket(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(newSeededStore(t,
		models.EventInsert{SessionID: "A", URL: "/", EventType: "pageview", Timestamp: at(0),
			TrafficSource: strPtr("google.com"), DeviceType: strPtr("pc"), Browser: strPtr("Chrome"), OS: strPtr("Windows")},
		models.EventInsert{SessionID: "A", URL: "/", EventType: "click", Timestamp: at(1),
			TrafficSource: strPtr("google.com"), DeviceType: strPtr("pc"), Browser: strPtr("Chrome"), OS: strPtr("Windows")},
		models.EventInsert{SessionID: "B", URL: "/", EventType: "pageview", Timestamp: at(2)},
		models.EventInsert{SessionID: "C", URL: "/", EventType: "pageview", Timestamp: at(3),
			DeviceType: strPtr("mobile"), Browser: strPtr("Safari"), OS: strPtr("iOS"), Country: strPtr("Italy")},
	))

	sources, err := engine.TrafficSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"google.com", "<nil>"}, statNames(sources))
	assert.Equal(t, []int{2, 2}, statValues(sources))

	devices, err := engine.DeviceStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pc", "<nil>", "mobile"}, statNames(devices))
	assert.Equal(t, []int{2, 1, 1}, statValues(devices))

	browsers, err := engine.BrowserStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chrome", "<nil>", "Safari"}, statNames(browsers))

	oses, err := engine.OSStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Windows", "<nil>", "iOS"}, statNames(oses))

	countries, err := engine.CountryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"<nil>", "Italy"}, statNames(countries))
	assert.Equal(t, []int{3, 1}, statValues(countries))

	charts, err := engine.Charts(ctx, DefaultTopPagesLimit)
	require.NoError(t, err)
	assert.Equal(t, sources, charts.TrafficSources)
	assert.Equal(t, devices, charts.Devices)
	assert.Equal(t, browsers, charts.Browsers)
	assert.Equal(t, oses, charts.OSes)
	assert.Equal(t, countries, charts.Countries)
}

func TestEngine_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(failingStore{})

	_, err := engine.Dashboard(ctx, DefaultActiveWindow)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = engine.Charts(ctx, DefaultTopPagesLimit)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = engine.BounceRate(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = engine.PredictPeakHour(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
