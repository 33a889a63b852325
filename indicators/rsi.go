package indicators

import (
	"fmt"

	"github.com/rustyeddy/foresight/market"
)

// RSI is a streaming Relative Strength Index with Wilder smoothing.
// Values range 0..100; flat-only data (no losses) reads 100.
type RSI struct {
	period    int
	avgGain   float64
	avgLoss   float64
	gainSum   float64
	lossSum   float64
	prevClose float64
	count     int
	hasPrev   bool
}

// NewRSI creates a new Relative Strength Index indicator with the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

func (r *RSI) Warmup() int {
	// Need period+1 bars to observe period close-to-close changes
	return r.period + 1
}

func (r *RSI) Reset() {
	r.avgGain = 0
	r.avgLoss = 0
	r.gainSum = 0
	r.lossSum = 0
	r.prevClose = 0
	r.count = 0
	r.hasPrev = false
}

func (r *RSI) Update(b market.Bar) {
	if !r.hasPrev {
		r.prevClose = b.Close
		r.hasPrev = true
		return
	}

	change := b.Close - r.prevClose
	r.prevClose = b.Close

	var gain, loss float64
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	if r.count < r.period {
		// During warmup, accumulate sums for the initial averages
		r.gainSum += gain
		r.lossSum += loss
		r.count++
		if r.count == r.period {
			r.avgGain = r.gainSum / float64(r.period)
			r.avgLoss = r.lossSum / float64(r.period)
		}
		return
	}

	// Wilder smoothing
	p := float64(r.period)
	r.avgGain = (r.avgGain*(p-1) + gain) / p
	r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	r.count++
}

func (r *RSI) Ready() bool {
	return r.count >= r.period
}

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
