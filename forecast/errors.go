package forecast

import "fmt"

// InsufficientDataError reports that too few indicators were defined to
// support a directional call. The aggregator still returns a NEUTRAL
// zero-confidence forecast alongside it, so the run can be recorded.
type InsufficientDataError struct {
	Signals int
	Min     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d indicator signals, need %d", e.Signals, e.Min)
}
