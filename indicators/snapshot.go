package indicators

import (
	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/market"
)

// Standard daily-bar periods. The forecast rules are written against
// these; they are fixed, not fitted.
const (
	SMAFastPeriod    = 20
	SMASlowPeriod    = 50
	EMAFastPeriod    = 12
	EMASlowPeriod    = 26
	MACDSignalPeriod = 9
	ADXPeriod        = 14
	RSIPeriod        = 14
	StochKPeriod     = 14
	StochDPeriod     = 3
	ROCPeriod        = 12
	WilliamsRPeriod  = 14
	BollPeriod       = 20
	ATRPeriod        = 14
	ATRMeanPeriod    = 20
	OBVTrendBars     = 5
	MFIPeriod        = 14
	VolumeMAPeriod   = 20
)

// BollWidth is the Bollinger band width in standard deviations.
const BollWidth = 2.0

// BuildSnapshot streams the full daily indicator set over the series
// and returns the readings at the final bar. Indicators still inside
// their warmup are left undefined so downstream rules skip them instead
// of reading zeros.
func BuildSnapshot(symbol string, bars market.Series) forecast.Snapshot {
	snap := forecast.Snapshot{Symbol: symbol}
	if len(bars) == 0 {
		return snap
	}

	last := bars[len(bars)-1]
	snap.Time = last.Time

	sma20 := NewMA(SMAFastPeriod)
	sma50 := NewMA(SMASlowPeriod)
	ema12 := NewEMA(EMAFastPeriod)
	ema26 := NewEMA(EMASlowPeriod)
	macd := NewMACD(EMAFastPeriod, EMASlowPeriod, MACDSignalPeriod)
	adx := NewADX(ADXPeriod)
	rsi := NewRSI(RSIPeriod)
	stoch := NewStoch(StochKPeriod, StochDPeriod)
	roc := NewROC(ROCPeriod)
	wr := NewWilliamsR(WilliamsRPeriod)
	boll := NewBollinger(BollPeriod, BollWidth)
	atr := NewATR(ATRPeriod)
	atrMean := newRollingMean(ATRMeanPeriod)
	obv := NewOBV(OBVTrendBars)
	mfi := NewMFI(MFIPeriod)
	volMA := NewVolumeMA(VolumeMAPeriod)

	all := []Indicator{sma20, sma50, ema12, ema26, macd, adx, rsi, stoch, roc, wr, boll, atr, obv, mfi, volMA}

	for _, b := range bars {
		for _, ind := range all {
			ind.Update(b)
		}
		if atr.Ready() {
			atrMean.push(atr.Value())
		}
	}

	if len(bars) > 1 {
		snap.Close = forecast.DefHistory(last.Close, []float64{bars[len(bars)-2].Close})
	} else {
		snap.Close = forecast.Def(last.Close)
	}
	snap.Volume = forecast.Def(last.Volume)

	if sma20.Ready() {
		snap.SMA20 = forecast.Def(sma20.Value())
	}
	if sma50.Ready() {
		snap.SMA50 = forecast.Def(sma50.Value())
	}
	if ema12.Ready() {
		snap.EMA12 = forecast.Def(ema12.Value())
	}
	if ema26.Ready() {
		snap.EMA26 = forecast.Def(ema26.Value())
	}
	if macd.Ready() {
		if prevM, ok := macd.Prev(); ok {
			prevS, _ := macd.PrevSignal()
			snap.MACD = forecast.DefHistory(macd.Value(), []float64{prevM})
			snap.MACDSignal = forecast.DefHistory(macd.Signal(), []float64{prevS})
		} else {
			snap.MACD = forecast.Def(macd.Value())
			snap.MACDSignal = forecast.Def(macd.Signal())
		}
	}
	if adx.Ready() {
		snap.ADX = forecast.Def(adx.Value())
	}
	if rsi.Ready() {
		snap.RSI14 = forecast.Def(rsi.Value())
	}
	if stoch.Ready() {
		snap.StochK = forecast.Def(stoch.Value())
		snap.StochD = forecast.Def(stoch.Signal())
	}
	if roc.Ready() {
		snap.ROC12 = forecast.Def(roc.Value())
	}
	if wr.Ready() {
		snap.WilliamsR = forecast.Def(wr.Value())
	}
	if boll.Ready() {
		snap.BollUpper = forecast.Def(boll.Upper())
		snap.BollMiddle = forecast.Def(boll.Value())
		snap.BollLower = forecast.Def(boll.Lower())
	}
	if atr.Ready() {
		snap.ATR14 = forecast.Def(atr.Value())
	}
	if atrMean.ready() {
		snap.ATRMean20 = forecast.Def(atrMean.value())
	}
	if obv.Ready() {
		snap.OBV = forecast.DefHistory(obv.Value(), obv.History(OBVTrendBars))
	}
	if mfi.Ready() {
		snap.MFI14 = forecast.Def(mfi.Value())
	}
	if volMA.Ready() {
		snap.VolumeSMA20 = forecast.Def(volMA.Value())
	}

	return snap
}
