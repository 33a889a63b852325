// Package forecast turns an indicator snapshot into a directional call
// with a confidence score. It is pure computation: no I/O, no clocks,
// no data fetching.
package forecast

import (
	"time"
)

// Direction is the forecast call for the next session.
type Direction string

const (
	Up      Direction = "UP"
	Down    Direction = "DOWN"
	Neutral Direction = "NEUTRAL"
)

// Category groups indicators by what they measure. Each category votes
// once; the overall call is the weighted blend of category votes.
type Category string

const (
	Trend      Category = "trend"
	Momentum   Category = "momentum"
	Volatility Category = "volatility"
	Volume     Category = "volume"
)

// Signal is one indicator's directional read: strength in [-1,+1]
// where +1 is maximally bullish, with a human-readable rationale.
type Signal struct {
	Indicator string  `json:"indicator"`
	Strength  float64 `json:"strength"`
	Rationale string  `json:"rationale"`
}

// CategorySignal is one category's aggregated vote. Strength() averages
// the member signals and applies the modifier, so a category holds one
// vote no matter how many indicators feed it.
type CategorySignal struct {
	Category Category `json:"category"`
	Signals  []Signal `json:"signals"`

	// Modifier scales the category mean. Only trend uses it (ADX trend
	// strength); elsewhere it stays 1.
	Modifier float64 `json:"modifier"`

	Note string `json:"note,omitempty"`
}

// Strength returns the category vote in [-1,+1].
func (c CategorySignal) Strength() float64 {
	if len(c.Signals) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range c.Signals {
		sum += s.Strength
	}
	mean := sum / float64(len(c.Signals))

	mod := c.Modifier
	if mod == 0 {
		mod = 1
	}
	return clamp(mean*mod, -1, 1)
}

// Forecast is an immutable directional call for one symbol and day.
type Forecast struct {
	ID         string           `json:"id"`
	Symbol     string           `json:"symbol"`
	Time       time.Time        `json:"time"`
	Direction  Direction        `json:"direction"`
	Confidence float64          `json:"confidence"`
	Strength   float64          `json:"strength"`
	Categories []CategorySignal `json:"categories"`
	RefPrice   float64          `json:"ref_price"`
	Horizon    time.Duration    `json:"horizon"`
}

// SignalCount returns how many indicator signals fed the forecast.
func (f Forecast) SignalCount() int {
	n := 0
	for _, c := range f.Categories {
		n += len(c.Signals)
	}
	return n
}

// DueAt returns when the forecast matures for evaluation.
func (f Forecast) DueAt() time.Time {
	return f.Time.Add(f.Horizon)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
