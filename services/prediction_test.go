package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvavassori/traffic-insights/models"
)

func atHour(session string, hour int) models.EventInsert {
	return pageview(session, "/", time.Date(2024, 3, 10, hour, 15, 0, 0, time.UTC))
}

func TestPredictPeakHour_Empty(t *testing.T) {
	prediction, err := NewEngine(newSeededStore(t)).PredictPeakHour(context.Background())
	require.NoError(t, err)

	assert.Nil(t, prediction.PeakHour)
	assert.Equal(t, NotEnoughDataMessage, prediction.Message)
	assert.Empty(t, prediction.Recommendations)
}

func TestPredictPeakHour_Mode(t *testing.T) {
	store := newSeededStore(t,
		atHour("a", 9), atHour("a", 9), atHour("b", 14), atHour("b", 9),
	)

	prediction, err := NewEngine(store).PredictPeakHour(context.Background())
	require.NoError(t, err)
	require.NotNil(t, prediction.PeakHour)
	assert.Equal(t, 9, *prediction.PeakHour)
}

func TestPredictPeakHour_TiePicksSmallestHour(t *testing.T) {
	// inserted with the later hour first so insertion order cannot decide
	store := newSeededStore(t,
		atHour("a", 14), atHour("a", 14), atHour("b", 9), atHour("b", 9),
	)

	prediction, err := NewEngine(store).PredictPeakHour(context.Background())
	require.NoError(t, err)
	require.NotNil(t, prediction.PeakHour)
	assert.Equal(t, 9, *prediction.PeakHour)
}

func TestPredictPeakHour_UsesUTCHour(t *testing.T) {
	rome := time.FixedZone("CET", 3600)
	store := newSeededStore(t,
		pageview("a", "/", time.Date(2024, 3, 10, 0, 30, 0, 0, rome)),
	)

	prediction, err := NewEngine(store).PredictPeakHour(context.Background())
	require.NoError(t, err)
	require.NotNil(t, prediction.PeakHour)
	assert.Equal(t, 23, *prediction.PeakHour)
}

func TestPredictPeakHour_HighBounceRecommendation(t *testing.T) {
	// three single-event sessions out of four: 75% bounce
	store := newSeededStore(t,
		atHour("a", 10), atHour("b", 10), atHour("c", 11), atHour("d", 11), atHour("d", 11),
	)

	prediction, err := NewEngine(store).PredictPeakHour(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"High bounce rate detected. Improve landing page content."}, prediction.Recommendations)
	assert.Empty(t, prediction.Message)
}

func TestPredictPeakHour_LowBounceNoRecommendation(t *testing.T) {
	store := newSeededStore(t,
		atHour("a", 10), atHour("a", 10), atHour("b", 11), atHour("b", 12),
	)

	prediction, err := NewEngine(store).PredictPeakHour(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, prediction.Recommendations)
	assert.Empty(t, prediction.Recommendations)
}

func TestPredictPeakHour_RulesEvaluatedInOrder(t *testing.T) {
	engine := NewEngine(newSeededStore(t, atHour("a", 20), atHour("b", 20)))
	engine.Rules = []Rule{
		{Applies: func(s Signals) bool { return s.PeakHour >= 18 }, Message: "evening"},
		{Applies: func(s Signals) bool { return s.BounceRate < 10 }, Message: "never"},
		{Applies: func(s Signals) bool { return s.BounceRate == 100 }, Message: "all bounced"},
	}

	prediction, err := engine.PredictPeakHour(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"evening", "all bounced"}, prediction.Recommendations)
}
