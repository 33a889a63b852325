// Package backtest replays the forecaster over history, grading every
// session's call against the following session's close. Nothing
// touches the journal: records are built in memory and folded into the
// usual scorecard.
package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/indicators"
	"github.com/rustyeddy/foresight/journal"
	"github.com/rustyeddy/foresight/market"
)

// Runner drives the aggregator across a bar series one session at a
// time, the way the live forecast command would have run each evening.
type Runner struct {
	Symbol string

	// Warmup is how many leading bars seed the indicators before the
	// first call. Below about 60 the slow indicators never define.
	Warmup int

	// Aggregator defaults to forecast.NewAggregator() when nil.
	Aggregator *forecast.Aggregator

	// Evaluator defaults to journal.NewEvaluator() when nil.
	Evaluator *journal.Evaluator
}

// Result is the replay summary: every graded call plus the scorecard
// fold over them.
type Result struct {
	Records []journal.PredictionRecord
	Stats   journal.Stats

	Start time.Time
	End   time.Time
}

// Run replays the sessions after Warmup, forecasting from the bars seen
// so far and grading against the next session's close. The last bar
// only grades its predecessor; no call is made from it. Degraded
// (insufficient-signal) sessions record NEUTRAL calls, same as live.
func (r *Runner) Run(bars market.Series) (Result, error) {
	if r.Symbol == "" {
		return Result{}, fmt.Errorf("backtest: Symbol is required")
	}
	if r.Warmup <= 0 {
		return Result{}, fmt.Errorf("backtest: Warmup must be positive")
	}
	if len(bars) <= r.Warmup+1 {
		return Result{}, fmt.Errorf("backtest: need more than %d bars, have %d", r.Warmup+1, len(bars))
	}

	agg := r.Aggregator
	if agg == nil {
		agg = forecast.NewAggregator()
	}
	ev := r.Evaluator
	if ev == nil {
		ev = journal.NewEvaluator()
	}

	res := Result{
		Start: bars[r.Warmup].Time,
		End:   bars[len(bars)-1].Time,
	}

	for i := r.Warmup; i < len(bars)-1; i++ {
		snap := indicators.BuildSnapshot(r.Symbol, bars[:i+1])
		f, err := agg.Aggregate(snap)
		if err != nil {
			var insufficient *forecast.InsufficientDataError
			if !errors.As(err, &insufficient) {
				return Result{}, err
			}
		}

		next := bars[i+1]
		outcome, changePct := ev.Classify(f.Direction, f.RefPrice, next.Close)
		res.Records = append(res.Records, journal.PredictionRecord{
			Forecast:          f,
			Status:            journal.Evaluated,
			EvaluatedAt:       next.Time,
			RealizedPrice:     next.Close,
			RealizedChangePct: changePct,
			Outcome:           outcome,
		})
	}

	res.Stats = journal.ComputeStats(res.Records)
	return res, nil
}
