package services

import (
	"context"

	"github.com/mvavassori/traffic-insights/models"
)

const NotEnoughDataMessage = "Not enough data"

// Signals are the inputs recommendation rules are evaluated against.
type Signals struct {
	BounceRate float64
	PeakHour   int
}

// Rule adds Message to the recommendations when Applies holds.
type Rule struct {
	Applies func(Signals) bool
	Message string
}

func DefaultRules() []Rule {
	return []Rule{
		{
			Applies: func(s Signals) bool { return s.BounceRate > 60 },
			Message: "High bounce rate detected. Improve landing page content.",
		},
	}
}

// PredictPeakHour returns the hour of day (UTC) with the most events. Ties go
// to the smallest hour. Every matching rule contributes its message, in rule
// order.
func (e *Engine) PredictPeakHour(ctx context.Context) (models.Prediction, error) {
	events, err := e.store.Scan(ctx, models.EventFilter{})
	if err != nil {
		return models.Prediction{}, err
	}
	if len(events) == 0 {
		return models.Prediction{Message: NotEnoughDataMessage, Recommendations: []string{}}, nil
	}

	var hours [24]int
	for _, ev := range events {
		hours[ev.Timestamp.UTC().Hour()]++
	}
	peak := 0
	for h := 1; h < len(hours); h++ {
		if hours[h] > hours[peak] {
			peak = h
		}
	}

	signals := Signals{
		BounceRate: bounceRate(DeriveSessions(events)),
		PeakHour:   peak,
	}
	recommendations := []string{}
	for _, rule := range e.Rules {
		if rule.Applies(signals) {
			recommendations = append(recommendations, rule.Message)
		}
	}

	return models.Prediction{PeakHour: &peak, Recommendations: recommendations}, nil
}
