package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/journal"
)

func TestObserveForecast(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.ObserveForecast(forecast.Forecast{
		ID:         "SPY-20250602",
		Direction:  forecast.Up,
		Confidence: 78.1,
		Strength:   0.625,
	})
	m.ObserveForecast(forecast.Forecast{
		ID:         "SPY-20250603",
		Direction:  forecast.Neutral,
		Confidence: 6.4,
		Strength:   0.0688,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForecastsTotal.WithLabelValues("UP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForecastsTotal.WithLabelValues("NEUTRAL")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ForecastsTotal.WithLabelValues("DOWN")))

	// gauges track the latest run
	assert.InDelta(t, 6.4, testutil.ToFloat64(m.LastConfidence), 1e-9)
	assert.InDelta(t, 0.0688, testutil.ToFloat64(m.LastStrength), 1e-9)
}

func TestObserveEvaluations(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	recs := []journal.PredictionRecord{
		{Status: journal.Evaluated, Outcome: journal.Correct},
		{Status: journal.Evaluated, Outcome: journal.Correct},
		{Status: journal.Evaluated, Outcome: journal.Incorrect},
	}
	m.ObserveEvaluations(recs)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("CORRECT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("INCORRECT")))
}

func TestSetScorecard(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.SetScorecard(journal.Stats{
		Total:     10,
		Pending:   3,
		Evaluated: 7,
		Accuracy:  0.714,
	})

	assert.InDelta(t, 0.714, testutil.ToFloat64(m.Accuracy), 1e-9)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PendingRecords))
}

func TestDurationsObserve(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.FetchDuration.Observe(0.25)
	m.ForecastDuration.Observe(time.Millisecond.Seconds())

	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ForecastDuration))
}
