package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/foresight/pkg/id"
)

// Fixed tunables. These are documented constants, not fitted values.
const (
	// DefaultDeadBand is the overall-strength band treated as NEUTRAL.
	DefaultDeadBand = 0.15

	// DefaultMinSignals is the minimum indicator signals required for a
	// directional call.
	DefaultMinSignals = 5

	// DefaultHorizon is how long a forecast waits before evaluation.
	DefaultHorizon = 24 * time.Hour

	// fullStrength is the |overall| that maps to full confidence.
	fullStrength = 0.80
)

// DefaultWeights blends the category votes. Trend and momentum carry
// most of the call; volatility is a damper more than a driver.
var DefaultWeights = map[Category]float64{
	Trend:      0.35,
	Momentum:   0.30,
	Volatility: 0.15,
	Volume:     0.20,
}

// Aggregator folds a snapshot into a Forecast. The zero value is not
// usable; construct with NewAggregator.
type Aggregator struct {
	Weights    map[Category]float64
	DeadBand   float64
	MinSignals int
	Horizon    time.Duration
}

// NewAggregator returns an aggregator with the documented defaults.
func NewAggregator() *Aggregator {
	w := make(map[Category]float64, len(DefaultWeights))
	for k, v := range DefaultWeights {
		w[k] = v
	}
	return &Aggregator{
		Weights:    w,
		DeadBand:   DefaultDeadBand,
		MinSignals: DefaultMinSignals,
		Horizon:    DefaultHorizon,
	}
}

// Aggregate scores the snapshot and returns the forecast. When fewer
// than MinSignals indicators are defined it returns a NEUTRAL forecast
// with zero confidence together with *InsufficientDataError; the
// forecast is still valid and recordable.
func (a *Aggregator) Aggregate(snap Snapshot) (Forecast, error) {
	cats := make([]CategorySignal, 0, 4)
	for _, cs := range []CategorySignal{
		trendSignals(snap),
		momentumSignals(snap),
		volatilitySignals(snap),
		volumeSignals(snap),
	} {
		if len(cs.Signals) > 0 {
			cats = append(cats, cs)
		}
	}

	f := Forecast{
		ID:         id.Forecast(snap.Symbol, snap.Time),
		Symbol:     snap.Symbol,
		Time:       snap.Time,
		Direction:  Neutral,
		Categories: cats,
		RefPrice:   snap.Close.Value,
		Horizon:    a.Horizon,
	}

	if n := f.SignalCount(); n < a.MinSignals {
		return f, &InsufficientDataError{Signals: n, Min: a.MinSignals}
	}

	overall := a.overall(cats)
	f.Strength = overall
	f.Direction = a.direction(overall)
	f.Confidence = a.confidence(overall, cats)
	return f, nil
}

// overall is the weight-renormalized mean over the categories that
// produced at least one signal. Categories absent from the snapshot
// contribute nothing rather than dragging the blend toward zero.
func (a *Aggregator) overall(cats []CategorySignal) float64 {
	var num, den float64
	for _, c := range cats {
		w := a.Weights[c.Category]
		if w <= 0 {
			continue
		}
		num += w * c.Strength()
		den += w
	}
	if den == 0 {
		return 0
	}
	return clamp(num/den, -1, 1)
}

func (a *Aggregator) direction(overall float64) Direction {
	switch {
	case overall > a.DeadBand:
		return Up
	case overall < -a.DeadBand:
		return Down
	default:
		return Neutral
	}
}

// confidence maps |overall| to 0..100 and discounts disagreement: full
// weight only when every scored category points the same way.
func (a *Aggregator) confidence(overall float64, cats []CategorySignal) float64 {
	if overall == 0 || len(cats) == 0 {
		return 0
	}
	agree := 0
	for _, c := range cats {
		if sign(c.Strength()) == sign(overall) {
			agree++
		}
	}
	agreement := float64(agree) / float64(len(cats))
	c := 100 * math.Min(1, math.Abs(overall)/fullStrength) * (0.5 + 0.5*agreement)
	return math.Round(c*10) / 10
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// trendSignals reads moving-average alignment and MACD, with ADX as a
// multiplicative strength modifier rather than a directional vote.
func trendSignals(s Snapshot) CategorySignal {
	cs := CategorySignal{Category: Trend, Modifier: 1}

	if s.Close.Defined && s.SMA20.Defined {
		c, m20 := s.Close.Value, s.SMA20.Value
		var sig Signal
		switch {
		case s.SMA50.Defined && c > m20 && m20 > s.SMA50.Value:
			sig = Signal{Indicator: "SMA", Strength: 1,
				Rationale: fmt.Sprintf("close %.2f above SMA20 %.2f above SMA50 %.2f", c, m20, s.SMA50.Value)}
		case s.SMA50.Defined && c < m20 && m20 < s.SMA50.Value:
			sig = Signal{Indicator: "SMA", Strength: -1,
				Rationale: fmt.Sprintf("close %.2f below SMA20 %.2f below SMA50 %.2f", c, m20, s.SMA50.Value)}
		case c > m20:
			sig = Signal{Indicator: "SMA", Strength: 0.5,
				Rationale: fmt.Sprintf("close %.2f above SMA20 %.2f", c, m20)}
		case c < m20:
			sig = Signal{Indicator: "SMA", Strength: -0.5,
				Rationale: fmt.Sprintf("close %.2f below SMA20 %.2f", c, m20)}
		default:
			sig = Signal{Indicator: "SMA", Strength: 0,
				Rationale: fmt.Sprintf("close sitting on SMA20 %.2f", m20)}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	if s.MACD.Defined && s.MACDSignal.Defined {
		macd, sigLine := s.MACD.Value, s.MACDSignal.Value
		prevM, okM := s.MACD.Prev()
		prevS, okS := s.MACDSignal.Prev()
		crossKnown := okM && okS

		var sig Signal
		switch {
		case crossKnown && prevM <= prevS && macd > sigLine:
			sig = Signal{Indicator: "MACD", Strength: 1,
				Rationale: fmt.Sprintf("bullish cross, MACD %.3f over signal %.3f", macd, sigLine)}
		case crossKnown && prevM >= prevS && macd < sigLine:
			sig = Signal{Indicator: "MACD", Strength: -1,
				Rationale: fmt.Sprintf("bearish cross, MACD %.3f under signal %.3f", macd, sigLine)}
		case macd > sigLine:
			sig = Signal{Indicator: "MACD", Strength: 0.5,
				Rationale: fmt.Sprintf("MACD %.3f above signal %.3f", macd, sigLine)}
		case macd < sigLine:
			sig = Signal{Indicator: "MACD", Strength: -0.5,
				Rationale: fmt.Sprintf("MACD %.3f below signal %.3f", macd, sigLine)}
		default:
			sig = Signal{Indicator: "MACD", Strength: 0,
				Rationale: fmt.Sprintf("MACD flat at signal %.3f", sigLine)}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	if s.ADX.Defined {
		cs.Modifier = clamp(s.ADX.Value/25, 0.75, 1.25)
		cs.Note = fmt.Sprintf("ADX %.1f scales trend vote by %.2f", s.ADX.Value, cs.Modifier)
	}

	return cs
}

// momentumSignals reads RSI, stochastic, rate of change, and Williams %R.
func momentumSignals(s Snapshot) CategorySignal {
	cs := CategorySignal{Category: Momentum, Modifier: 1}

	if s.RSI14.Defined {
		v := s.RSI14.Value
		var sig Signal
		switch {
		case v > 70:
			sig = Signal{Indicator: "RSI", Strength: clamp(-(0.5 + (v-70)/60), -1, 0),
				Rationale: fmt.Sprintf("RSI %.1f overbought", v)}
		case v >= 60:
			sig = Signal{Indicator: "RSI", Strength: 0.25,
				Rationale: fmt.Sprintf("RSI %.1f in the bullish band", v)}
		case v < 30:
			sig = Signal{Indicator: "RSI", Strength: clamp(0.5+(30-v)/60, 0, 1),
				Rationale: fmt.Sprintf("RSI %.1f oversold", v)}
		case v < 40:
			sig = Signal{Indicator: "RSI", Strength: -0.25,
				Rationale: fmt.Sprintf("RSI %.1f in the bearish band", v)}
		default:
			sig = Signal{Indicator: "RSI", Strength: 0,
				Rationale: fmt.Sprintf("RSI %.1f neutral", v)}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	if s.StochK.Defined && s.StochD.Defined {
		k, d := s.StochK.Value, s.StochD.Value
		var sig Signal
		switch {
		case k > d && k < 80:
			sig = Signal{Indicator: "STOCH", Strength: 0.5,
				Rationale: fmt.Sprintf("%%K %.1f above %%D %.1f with room to run", k, d)}
		case k < d && k > 20:
			sig = Signal{Indicator: "STOCH", Strength: -0.5,
				Rationale: fmt.Sprintf("%%K %.1f below %%D %.1f", k, d)}
		default:
			sig = Signal{Indicator: "STOCH", Strength: 0,
				Rationale: fmt.Sprintf("%%K %.1f pinned or flat against %%D %.1f", k, d)}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	if s.ROC12.Defined {
		v := s.ROC12.Value
		var sig Signal
		switch {
		case v > 0:
			sig = Signal{Indicator: "ROC", Strength: 0.5,
				Rationale: fmt.Sprintf("12-bar change %+.2f%%", v)}
		case v < 0:
			sig = Signal{Indicator: "ROC", Strength: -0.5,
				Rationale: fmt.Sprintf("12-bar change %+.2f%%", v)}
		default:
			sig = Signal{Indicator: "ROC", Strength: 0, Rationale: "12-bar change flat"}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	if s.WilliamsR.Defined {
		v := s.WilliamsR.Value
		var sig Signal
		switch {
		case v < -80:
			sig = Signal{Indicator: "W%R", Strength: 0.5,
				Rationale: fmt.Sprintf("Williams %%R %.1f oversold", v)}
		case v > -20:
			sig = Signal{Indicator: "W%R", Strength: -0.5,
				Rationale: fmt.Sprintf("Williams %%R %.1f overbought", v)}
		default:
			sig = Signal{Indicator: "W%R", Strength: 0,
				Rationale: fmt.Sprintf("Williams %%R %.1f mid-range", v)}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	return cs
}

// volatilitySignals reads Bollinger position and ATR expansion. Both
// lean contrarian: stretched or expanding conditions argue against
// chasing the move.
func volatilitySignals(s Snapshot) CategorySignal {
	cs := CategorySignal{Category: Volatility, Modifier: 1}

	if s.Close.Defined && s.BollUpper.Defined && s.BollMiddle.Defined && s.BollLower.Defined {
		c := s.Close.Value
		var sig Signal
		switch {
		case c > s.BollUpper.Value:
			sig = Signal{Indicator: "BOLL", Strength: -0.5,
				Rationale: fmt.Sprintf("close %.2f stretched above upper band %.2f", c, s.BollUpper.Value)}
		case c < s.BollLower.Value:
			sig = Signal{Indicator: "BOLL", Strength: 0.5,
				Rationale: fmt.Sprintf("close %.2f below lower band %.2f", c, s.BollLower.Value)}
		case c > s.BollMiddle.Value:
			sig = Signal{Indicator: "BOLL", Strength: 0.25,
				Rationale: fmt.Sprintf("close %.2f in upper half of bands", c)}
		case c < s.BollMiddle.Value:
			sig = Signal{Indicator: "BOLL", Strength: -0.25,
				Rationale: fmt.Sprintf("close %.2f in lower half of bands", c)}
		default:
			sig = Signal{Indicator: "BOLL", Strength: 0,
				Rationale: fmt.Sprintf("close %.2f on the middle band", c)}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	if s.ATR14.Defined && s.ATRMean20.Defined {
		var sig Signal
		if s.ATR14.Value > s.ATRMean20.Value {
			sig = Signal{Indicator: "ATR", Strength: -0.25,
				Rationale: fmt.Sprintf("ATR %.2f above its 20-bar mean %.2f, range expanding", s.ATR14.Value, s.ATRMean20.Value)}
		} else {
			sig = Signal{Indicator: "ATR", Strength: 0,
				Rationale: fmt.Sprintf("ATR %.2f contained", s.ATR14.Value)}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	return cs
}

// volumeSignals reads volume surge direction, money flow, and the OBV
// trend.
func volumeSignals(s Snapshot) CategorySignal {
	cs := CategorySignal{Category: Volume, Modifier: 1}

	if s.Volume.Defined && s.VolumeSMA20.Defined && s.Close.Defined {
		if prevClose, ok := s.Close.Prev(); ok {
			surge := s.Volume.Value > s.VolumeSMA20.Value
			var sig Signal
			switch {
			case surge && s.Close.Value > prevClose:
				sig = Signal{Indicator: "VOL", Strength: 1,
					Rationale: "above-average volume behind an up close"}
			case surge && s.Close.Value < prevClose:
				sig = Signal{Indicator: "VOL", Strength: -1,
					Rationale: "above-average volume behind a down close"}
			default:
				sig = Signal{Indicator: "VOL", Strength: 0,
					Rationale: "volume near its 20-bar average"}
			}
			cs.Signals = append(cs.Signals, sig)
		}
	}

	if s.MFI14.Defined {
		v := s.MFI14.Value
		var sig Signal
		switch {
		case v > 80:
			sig = Signal{Indicator: "MFI", Strength: -0.5,
				Rationale: fmt.Sprintf("MFI %.1f overbought", v)}
		case v < 20:
			sig = Signal{Indicator: "MFI", Strength: 0.5,
				Rationale: fmt.Sprintf("MFI %.1f oversold", v)}
		default:
			sig = Signal{Indicator: "MFI", Strength: 0,
				Rationale: fmt.Sprintf("MFI %.1f mid-range", v)}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	if s.OBV.Defined && len(s.OBV.History) >= 2 {
		h := s.OBV.History
		slope := (h[len(h)-1] - h[0]) / float64(len(h)-1)
		var sig Signal
		switch {
		case slope > 0:
			sig = Signal{Indicator: "OBV", Strength: 0.5, Rationale: "OBV rising over recent bars"}
		case slope < 0:
			sig = Signal{Indicator: "OBV", Strength: -0.5, Rationale: "OBV falling over recent bars"}
		default:
			sig = Signal{Indicator: "OBV", Strength: 0, Rationale: "OBV flat over recent bars"}
		}
		cs.Signals = append(cs.Signals, sig)
	}

	return cs
}
