package forecast

import "time"

// Reading is one indicator value at snapshot time. Indicators that have
// not finished warmup are carried with Defined=false and must be
// skipped, never read as zero.
type Reading struct {
	Value   float64
	History []float64 // most-recent-last, only where a rule needs lookback
	Defined bool
}

// Def wraps a defined reading.
func Def(v float64) Reading {
	return Reading{Value: v, Defined: true}
}

// DefHistory wraps a defined reading with lookback values.
func DefHistory(v float64, history []float64) Reading {
	return Reading{Value: v, History: history, Defined: true}
}

// Prev returns the most recent history value.
func (r Reading) Prev() (float64, bool) {
	if !r.Defined || len(r.History) == 0 {
		return 0, false
	}
	return r.History[len(r.History)-1], true
}

// Snapshot is the full indicator state for one symbol at one close.
// Every field the aggregation rules can touch is enumerated here, so a
// snapshot is inspectable and a forecast is reproducible from it.
type Snapshot struct {
	Symbol string
	Time   time.Time

	Close       Reading // History: prior close
	SMA20       Reading
	SMA50       Reading
	EMA12       Reading
	EMA26       Reading
	MACD        Reading // History: prior MACD line value
	MACDSignal  Reading // History: prior signal line value
	ADX         Reading
	RSI14       Reading
	StochK      Reading
	StochD      Reading
	ROC12       Reading
	WilliamsR   Reading
	BollUpper   Reading
	BollMiddle  Reading
	BollLower   Reading
	ATR14       Reading
	ATRMean20   Reading
	OBV         Reading // History: recent OBV values, oldest first
	MFI14       Reading
	Volume      Reading
	VolumeSMA20 Reading
}

// DefinedCount returns how many snapshot readings are defined.
func (s Snapshot) DefinedCount() int {
	n := 0
	for _, r := range s.readings() {
		if r.Defined {
			n++
		}
	}
	return n
}

func (s Snapshot) readings() []Reading {
	return []Reading{
		s.Close, s.SMA20, s.SMA50, s.EMA12, s.EMA26,
		s.MACD, s.MACDSignal, s.ADX, s.RSI14, s.StochK, s.StochD,
		s.ROC12, s.WilliamsR, s.BollUpper, s.BollMiddle, s.BollLower,
		s.ATR14, s.ATRMean20, s.OBV, s.MFI14, s.Volume, s.VolumeSMA20,
	}
}

// Values returns the defined readings keyed by stable snake_case names,
// the shape exported alongside a forecast so a dashboard can show what
// the call was based on.
func (s Snapshot) Values() map[string]float64 {
	named := []struct {
		name string
		r    Reading
	}{
		{"close", s.Close},
		{"sma20", s.SMA20},
		{"sma50", s.SMA50},
		{"ema12", s.EMA12},
		{"ema26", s.EMA26},
		{"macd", s.MACD},
		{"macd_signal", s.MACDSignal},
		{"adx", s.ADX},
		{"rsi14", s.RSI14},
		{"stoch_k", s.StochK},
		{"stoch_d", s.StochD},
		{"roc12", s.ROC12},
		{"williams_r", s.WilliamsR},
		{"boll_upper", s.BollUpper},
		{"boll_middle", s.BollMiddle},
		{"boll_lower", s.BollLower},
		{"atr14", s.ATR14},
		{"atr_mean20", s.ATRMean20},
		{"obv", s.OBV},
		{"mfi14", s.MFI14},
		{"volume", s.Volume},
		{"volume_sma20", s.VolumeSMA20},
	}

	out := make(map[string]float64, len(named))
	for _, nr := range named {
		if nr.r.Defined {
			out[nr.name] = nr.r.Value
		}
	}
	return out
}
