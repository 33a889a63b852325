// journal/evaluate.go
package journal

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/rustyeddy/foresight/forecast"
)

// DefaultDeadBandPct is the realized-move threshold, in percent, below
// which the market is considered to have gone nowhere. A +0.05% drift
// neither confirms an UP call nor refutes a DOWN call.
const DefaultDeadBandPct = 0.1

// PriceFunc resolves the realized price for a symbol at (or after) the
// moment a prediction matured. Implementations typically close over a
// data client or a bar series.
type PriceFunc func(symbol string, at time.Time) (float64, error)

// Evaluator grades matured predictions against realized prices.
type Evaluator struct {
	// DeadBandPct widens or narrows the neutral zone. Zero means any
	// nonzero move counts as directional.
	DeadBandPct float64
}

func NewEvaluator() *Evaluator {
	return &Evaluator{DeadBandPct: DefaultDeadBandPct}
}

// Classify grades a single prediction: it compares the realized move
// against the dead band and the predicted direction, returning the
// outcome and the realized change in percent. A NEUTRAL call only earns
// NEUTRAL_CORRECT when the market actually stayed inside the band.
func (e *Evaluator) Classify(dir forecast.Direction, refPrice, realized float64) (Outcome, float64) {
	var changePct float64
	if refPrice != 0 {
		changePct = (realized - refPrice) / refPrice * 100
	}

	realizedDir := forecast.Neutral
	if math.Abs(changePct) > e.DeadBandPct {
		if changePct > 0 {
			realizedDir = forecast.Up
		} else {
			realizedDir = forecast.Down
		}
	}

	switch {
	case dir == forecast.Neutral && realizedDir == forecast.Neutral:
		return NeutralCorrect, changePct
	case dir == realizedDir:
		return Correct, changePct
	default:
		return Incorrect, changePct
	}
}

// EvaluateDue grades every pending prediction that has matured by now,
// oldest first, and persists each verdict as it lands. The realized
// price is looked up at the prediction's due time. On the first lookup
// or store failure it returns the records already evaluated along with
// the error, so a flaky price source never blocks the rest of a later
// run: the failed record stays PENDING and is retried next time.
func (e *Evaluator) EvaluateDue(store Store, now time.Time, price PriceFunc) ([]PredictionRecord, error) {
	due, err := store.PendingDue(now)
	if err != nil {
		return nil, errors.Wrap(err, "listing due predictions")
	}

	var done []PredictionRecord
	for _, rec := range due {
		realized, err := price(rec.Symbol, rec.DueAt())
		if err != nil {
			return done, errors.Wrapf(err, "realized price for %s", rec.ID)
		}

		outcome, changePct := e.Classify(rec.Direction, rec.RefPrice, realized)
		updated, err := store.MarkEvaluated(rec.ID, Evaluation{
			At:        now.UTC(),
			Price:     realized,
			ChangePct: changePct,
			Outcome:   outcome,
		})
		if err != nil {
			return done, errors.Wrapf(err, "recording verdict for %s", rec.ID)
		}
		done = append(done, updated)
	}
	return done, nil
}
