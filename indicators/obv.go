package indicators

import (
	"github.com/rustyeddy/foresight/market"
)

// OBV is a streaming On-Balance Volume indicator: a running total that
// adds the bar's volume when close rises and subtracts it when close
// falls. The absolute level is arbitrary; callers read its direction
// via History.
type OBV struct {
	obv       float64
	prevClose float64
	hasPrev   bool
	history   []float64
	keep      int
}

// NewOBV creates an On-Balance Volume indicator retaining keep recent
// values for trend reads.
func NewOBV(keep int) *OBV {
	if keep < 1 {
		keep = 1
	}
	return &OBV{
		keep:    keep,
		history: make([]float64, 0, keep),
	}
}

func (o *OBV) Name() string {
	return "OBV"
}

func (o *OBV) Warmup() int {
	return 1
}

func (o *OBV) Reset() {
	o.obv = 0
	o.prevClose = 0
	o.hasPrev = false
	o.history = o.history[:0]
}

func (o *OBV) Update(b market.Bar) {
	if o.hasPrev {
		switch {
		case b.Close > o.prevClose:
			o.obv += b.Volume
		case b.Close < o.prevClose:
			o.obv -= b.Volume
		}
	}
	o.prevClose = b.Close
	o.hasPrev = true

	o.history = append(o.history, o.obv)
	if len(o.history) > o.keep {
		o.history = o.history[1:]
	}
}

func (o *OBV) Ready() bool {
	return o.hasPrev
}

func (o *OBV) Value() float64 {
	if !o.Ready() {
		return 0
	}
	return o.obv
}

// History returns up to n recent OBV values, oldest first. The slice
// is a copy.
func (o *OBV) History(n int) []float64 {
	if n > len(o.history) {
		n = len(o.history)
	}
	out := make([]float64, n)
	copy(out, o.history[len(o.history)-n:])
	return out
}
