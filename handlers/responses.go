package handlers

import (
	"fmt"

	"github.com/mvavassori/traffic-insights/models"
	"github.com/mvavassori/traffic-insights/utils"
)

const directTrafficLabel = "Direct"

type NameValue struct {
	Name  *string `json:"name"`
	Value int     `json:"value"`
}

type DashboardResponse struct {
	ActiveVisitors      int     `json:"active_visitors"`
	BounceRate          float64 `json:"bounce_rate"`
	AvgSessionDuration  float64 `json:"avg_session_duration"`
	PageViewsPerSession float64 `json:"page_views_per_session"`
	TotalPageviews      int     `json:"total_pageviews"`
}

type ChartsResponse struct {
	TrafficSources []NameValue `json:"traffic_sources"`
	Devices        []NameValue `json:"devices"`
	Browsers       []NameValue `json:"browsers"`
	OSes           []NameValue `json:"oses"`
	Countries      []NameValue `json:"countries"`
	TopPages       []NameValue `json:"top_pages"`
}

type PeakTrafficResponse struct {
	PeakHour        *int     `json:"peak_hour"`
	PeakTimeStr     string   `json:"peak_time_str,omitempty"`
	Message         string   `json:"message,omitempty"`
	Recommendations []string `json:"recommendations"`
}

func newDashboardResponse(d models.Dashboard) DashboardResponse {
	return DashboardResponse{
		ActiveVisitors:      d.ActiveVisitors,
		BounceRate:          utils.Round2(d.BounceRate),
		AvgSessionDuration:  utils.Round2(d.AvgSessionDuration),
		PageViewsPerSession: utils.Round2(d.PageViewsPerSession),
		TotalPageviews:      d.TotalPageviews,
	}
}

func newChartsResponse(c models.Charts) ChartsResponse {
	direct := directTrafficLabel
	return ChartsResponse{
		TrafficSources: toNameValues(c.TrafficSources, &direct),
		Devices:        toNameValues(c.Devices, nil),
		Browsers:       toNameValues(c.Browsers, nil),
		OSes:           toNameValues(c.OSes, nil),
		Countries:      toNameValues(c.Countries, nil),
		TopPages:       toNameValues(c.TopPages, nil),
	}
}

// toNameValues labels the nil bucket with nilLabel, which may itself be nil.
func toNameValues(stats []models.Stat, nilLabel *string) []NameValue {
	out := make([]NameValue, 0, len(stats))
	for _, s := range stats {
		name := s.Name
		if name == nil {
			name = nilLabel
		}
		out = append(out, NameValue{Name: name, Value: s.Value})
	}
	return out
}

func newPeakTrafficResponse(p models.Prediction) PeakTrafficResponse {
	resp := PeakTrafficResponse{
		PeakHour:        p.PeakHour,
		Message:         p.Message,
		Recommendations: p.Recommendations,
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []string{}
	}
	if p.PeakHour != nil {
		resp.PeakTimeStr = fmt.Sprintf("%d:00 - %d:00", *p.PeakHour, *p.PeakHour+1)
	}
	return resp
}
