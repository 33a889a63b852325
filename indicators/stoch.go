package indicators

import (
	"fmt"

	"github.com/rustyeddy/foresight/market"
)

// Stoch is a streaming Stochastic Oscillator. Value() is %K; the
// signal line %D is the 3-bar SMA of %K, read via Signal().
// A flat high/low range reads 50.
type Stoch struct {
	kPeriod int
	dPeriod int
	bars    []market.Bar
	d       *rollingMean
}

// NewStoch creates a Stochastic Oscillator with the given %K lookback
// and %D smoothing periods.
func NewStoch(kPeriod, dPeriod int) *Stoch {
	return &Stoch{
		kPeriod: kPeriod,
		dPeriod: dPeriod,
		bars:    make([]market.Bar, 0, kPeriod),
		d:       newRollingMean(dPeriod),
	}
}

func (s *Stoch) Name() string {
	return fmt.Sprintf("STOCH(%d,%d)", s.kPeriod, s.dPeriod)
}

func (s *Stoch) Warmup() int {
	// %D needs dPeriod %K readings on top of the %K lookback
	return s.kPeriod + s.dPeriod - 1
}

func (s *Stoch) Reset() {
	s.bars = s.bars[:0]
	s.d.reset()
}

func (s *Stoch) Update(b market.Bar) {
	s.bars = append(s.bars, b)
	if len(s.bars) > s.kPeriod {
		s.bars = s.bars[1:]
	}
	if len(s.bars) >= s.kPeriod {
		s.d.push(s.k())
	}
}

func (s *Stoch) k() float64 {
	lowest := s.bars[0].Low
	highest := s.bars[0].High
	for _, b := range s.bars[1:] {
		if b.Low < lowest {
			lowest = b.Low
		}
		if b.High > highest {
			highest = b.High
		}
	}
	if highest == lowest {
		return 50
	}
	last := s.bars[len(s.bars)-1]
	return 100 * (last.Close - lowest) / (highest - lowest)
}

func (s *Stoch) Ready() bool {
	return len(s.bars) >= s.kPeriod && s.d.ready()
}

// Value returns %K.
func (s *Stoch) Value() float64 {
	if !s.Ready() {
		return 0
	}
	return s.k()
}

// Signal returns %D, the smoothed %K.
func (s *Stoch) Signal() float64 {
	if !s.Ready() {
		return 0
	}
	return s.d.value()
}
