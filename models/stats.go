package models

// Stat is one bucket of a grouped count. Name is nil for the bucket of events
// where the grouped field is absent.
type Stat struct {
	Name  *string
	Value int
}

// Dashboard holds the full-precision dashboard metrics.
type Dashboard struct {
	ActiveVisitors      int
	TotalPageviews      int
	AvgSessionDuration  float64
	BounceRate          float64
	PageViewsPerSession float64
}

// Charts holds the grouped breakdowns shown on the dashboard charts.
type Charts struct {
	TrafficSources []Stat
	Devices        []Stat
	Browsers       []Stat
	OSes           []Stat
	Countries      []Stat
	TopPages       []Stat
}

// Prediction is the result of the peak-traffic heuristic. PeakHour is nil when
// there is no data to predict from.
type Prediction struct {
	PeakHour        *int
	Message         string
	Recommendations []string
}
