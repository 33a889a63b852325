package indicators

import (
	"fmt"

	"github.com/rustyeddy/foresight/market"
)

// WilliamsR is a streaming Williams %R indicator. Values range -100..0;
// a flat high/low range reads -50.
type WilliamsR struct {
	period int
	bars   []market.Bar
}

// NewWilliamsR creates a Williams %R indicator with the given lookback.
func NewWilliamsR(period int) *WilliamsR {
	return &WilliamsR{
		period: period,
		bars:   make([]market.Bar, 0, period),
	}
}

func (w *WilliamsR) Name() string {
	return fmt.Sprintf("W%%R(%d)", w.period)
}

func (w *WilliamsR) Warmup() int {
	return w.period
}

func (w *WilliamsR) Reset() {
	w.bars = w.bars[:0]
}

func (w *WilliamsR) Update(b market.Bar) {
	w.bars = append(w.bars, b)
	if len(w.bars) > w.period {
		w.bars = w.bars[1:]
	}
}

func (w *WilliamsR) Ready() bool {
	return len(w.bars) >= w.period
}

func (w *WilliamsR) Value() float64 {
	if !w.Ready() {
		return 0
	}

	lowest := w.bars[0].Low
	highest := w.bars[0].High
	for _, b := range w.bars[1:] {
		if b.Low < lowest {
			lowest = b.Low
		}
		if b.High > highest {
			highest = b.High
		}
	}
	if highest == lowest {
		return -50
	}
	last := w.bars[len(w.bars)-1]
	return -100 * (highest - last.Close) / (highest - lowest)
}
