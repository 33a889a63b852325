package indicators

import (
	"fmt"

	"github.com/rustyeddy/foresight/market"
)

// ROC is a streaming Rate of Change indicator: the percent change of
// close against the close period bars ago.
type ROC struct {
	period int
	closes []float64
}

// NewROC creates a Rate of Change indicator with the given lookback.
func NewROC(period int) *ROC {
	return &ROC{
		period: period,
		closes: make([]float64, 0, period+1),
	}
}

func (r *ROC) Name() string {
	return fmt.Sprintf("ROC(%d)", r.period)
}

func (r *ROC) Warmup() int {
	return r.period + 1
}

func (r *ROC) Reset() {
	r.closes = r.closes[:0]
}

func (r *ROC) Update(b market.Bar) {
	r.closes = append(r.closes, b.Close)
	if len(r.closes) > r.period+1 {
		r.closes = r.closes[1:]
	}
}

func (r *ROC) Ready() bool {
	return len(r.closes) >= r.period+1
}

func (r *ROC) Value() float64 {
	if !r.Ready() {
		return 0
	}
	base := r.closes[0]
	if base == 0 {
		return 0
	}
	last := r.closes[len(r.closes)-1]
	return (last - base) / base * 100
}
