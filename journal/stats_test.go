package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/foresight/forecast"
)

func statRecord(id string, dir forecast.Direction, outcome Outcome) PredictionRecord {
	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	rec := PredictionRecord{
		Forecast: forecast.Forecast{
			ID:        id,
			Symbol:    "SPY",
			Time:      day,
			Direction: dir,
			RefPrice:  510,
			Horizon:   24 * time.Hour,
		},
		Status: Pending,
	}
	if outcome != "" {
		rec.Status = Evaluated
		rec.Outcome = outcome
		rec.EvaluatedAt = day.Add(25 * time.Hour)
	}
	return rec
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	recs := []PredictionRecord{
		statRecord("SPY-20250602", forecast.Up, Correct),
		statRecord("SPY-20250603", forecast.Up, Incorrect),
		statRecord("SPY-20250604", forecast.Up, Correct),
		statRecord("SPY-20250605", forecast.Down, Correct),
		statRecord("SPY-20250606", forecast.Neutral, NeutralCorrect),
		statRecord("SPY-20250609", forecast.Up, ""),
	}

	st := ComputeStats(recs)

	assert.Equal(t, 6, st.Total)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, 5, st.Evaluated)
	assert.Equal(t, 3, st.Correct)
	assert.Equal(t, 1, st.NeutralCorrect)
	assert.Equal(t, 1, st.Incorrect)
	assert.InDelta(t, 0.8, st.Accuracy, 1e-9)

	up := st.ByDirection[forecast.Up]
	assert.Equal(t, 4, up.Total)
	assert.Equal(t, 3, up.Evaluated)
	assert.Equal(t, 2, up.Correct)
	assert.Equal(t, 1, up.Incorrect)
	assert.InDelta(t, 2.0/3.0, up.Accuracy, 1e-9)

	down := st.ByDirection[forecast.Down]
	assert.Equal(t, 1, down.Total)
	assert.InDelta(t, 1.0, down.Accuracy, 1e-9)

	neutral := st.ByDirection[forecast.Neutral]
	assert.Equal(t, 1, neutral.NeutralCorrect)
	assert.InDelta(t, 1.0, neutral.Accuracy, 1e-9)
}

func TestComputeStatsOrderIndependent(t *testing.T) {
	t.Parallel()

	recs := []PredictionRecord{
		statRecord("SPY-20250602", forecast.Up, Correct),
		statRecord("SPY-20250603", forecast.Down, Incorrect),
		statRecord("SPY-20250604", forecast.Neutral, NeutralCorrect),
		statRecord("SPY-20250605", forecast.Up, ""),
	}
	reversed := make([]PredictionRecord, len(recs))
	for i, rec := range recs {
		reversed[len(recs)-1-i] = rec
	}

	assert.Equal(t, ComputeStats(recs), ComputeStats(reversed))
}

func TestComputeStatsEmpty(t *testing.T) {
	t.Parallel()

	st := ComputeStats(nil)

	assert.Zero(t, st.Total)
	assert.Zero(t, st.Evaluated)
	assert.Zero(t, st.Accuracy)
	assert.NotNil(t, st.ByDirection)
	assert.Empty(t, st.ByDirection)
}
