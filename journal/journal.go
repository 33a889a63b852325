// Package journal persists forecasts as prediction records and scores
// them once they mature. Records are append-only: a prediction is born
// PENDING and moves to EVALUATED exactly once, keeping the accuracy
// history honest.
package journal

import (
	"time"

	"github.com/rustyeddy/foresight/forecast"
)

// Status is the lifecycle state of a prediction record.
type Status string

const (
	Pending   Status = "PENDING"
	Evaluated Status = "EVALUATED"
)

// Outcome of an evaluated prediction. NEUTRAL_CORRECT marks a NEUTRAL
// call confirmed by a flat realized move; it counts toward accuracy but
// is reported separately from directional hits.
type Outcome string

const (
	Correct        Outcome = "CORRECT"
	NeutralCorrect Outcome = "NEUTRAL_CORRECT"
	Incorrect      Outcome = "INCORRECT"
)

// PredictionRecord is one immutable forecast plus its evaluation state.
type PredictionRecord struct {
	forecast.Forecast

	Status            Status    `json:"status"`
	EvaluatedAt       time.Time `json:"evaluated_at"`
	RealizedPrice     float64   `json:"realized_price"`
	RealizedChangePct float64   `json:"realized_change_pct"`
	Outcome           Outcome   `json:"outcome,omitempty"`
}

// Due reports whether the record has matured for evaluation.
func (r PredictionRecord) Due(now time.Time) bool {
	return r.Status == Pending && !r.DueAt().After(now)
}

// Evaluation is the realized result MarkEvaluated applies to a record.
type Evaluation struct {
	At        time.Time
	Price     float64
	ChangePct float64
	Outcome   Outcome
}

// Store persists prediction records.
//
// Append rejects an existing forecast id with *DuplicateError, which is
// what makes re-running the same day safe. MarkEvaluated applies the
// PENDING -> EVALUATED transition atomically and rejects a repeat with
// *AlreadyEvaluatedError. All and PendingDue return records in
// insertion order, oldest first.
type Store interface {
	Append(f forecast.Forecast) (PredictionRecord, error)
	Get(id string) (PredictionRecord, error)
	All() ([]PredictionRecord, error)
	PendingDue(now time.Time) ([]PredictionRecord, error)
	MarkEvaluated(id string, ev Evaluation) (PredictionRecord, error)
	Close() error
}
