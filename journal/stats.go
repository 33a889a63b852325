// journal/stats.go
package journal

import "github.com/rustyeddy/foresight/forecast"

// DirectionStats breaks the record down by predicted direction.
type DirectionStats struct {
	Total          int     `json:"total"`
	Evaluated      int     `json:"evaluated"`
	Correct        int     `json:"correct"`
	NeutralCorrect int     `json:"neutral_correct"`
	Incorrect      int     `json:"incorrect"`
	Accuracy       float64 `json:"accuracy"`
}

// Stats is the aggregate scorecard over a prediction history. Accuracy
// is (Correct + NeutralCorrect) / Evaluated as a fraction in [0,1],
// zero while nothing has been evaluated.
type Stats struct {
	Total          int                                   `json:"total"`
	Pending        int                                   `json:"pending"`
	Evaluated      int                                   `json:"evaluated"`
	Correct        int                                   `json:"correct"`
	NeutralCorrect int                                   `json:"neutral_correct"`
	Incorrect      int                                   `json:"incorrect"`
	Accuracy       float64                               `json:"accuracy"`
	ByDirection    map[forecast.Direction]DirectionStats `json:"by_direction"`
}

// ComputeStats folds a record slice into a scorecard. It is pure and
// order independent, so callers can hand it Store.All output or any
// filtered subset.
func ComputeStats(recs []PredictionRecord) Stats {
	st := Stats{ByDirection: make(map[forecast.Direction]DirectionStats)}

	for _, rec := range recs {
		st.Total++
		dir := st.ByDirection[rec.Direction]
		dir.Total++

		switch rec.Status {
		case Pending:
			st.Pending++
		case Evaluated:
			st.Evaluated++
			dir.Evaluated++
			switch rec.Outcome {
			case Correct:
				st.Correct++
				dir.Correct++
			case NeutralCorrect:
				st.NeutralCorrect++
				dir.NeutralCorrect++
			case Incorrect:
				st.Incorrect++
				dir.Incorrect++
			}
		}

		st.ByDirection[rec.Direction] = dir
	}

	if st.Evaluated > 0 {
		st.Accuracy = float64(st.Correct+st.NeutralCorrect) / float64(st.Evaluated)
	}
	for d, dir := range st.ByDirection {
		if dir.Evaluated > 0 {
			dir.Accuracy = float64(dir.Correct+dir.NeutralCorrect) / float64(dir.Evaluated)
			st.ByDirection[d] = dir
		}
	}

	return st
}
