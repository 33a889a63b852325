package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/foresight/market"
)

func barsFromCloses(closes ...float64) market.Series {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(market.Series, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

// makeBars builds n synthetic daily bars with a gentle uptrend and a
// deterministic wobble so every indicator sees both gains and losses.
func makeBars(n int) market.Series {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(market.Series, n)
	for i := 0; i < n; i++ {
		c := 100 + 0.5*float64(i) + 2*math.Sin(float64(i))
		bars[i] = market.Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1.5,
			Low:    c - 1.5,
			Close:  c,
			Volume: 1_000_000 + 10_000*float64(i%7),
		}
	}
	return bars
}

func feed(ind Indicator, bars market.Series) {
	for _, b := range bars {
		ind.Update(b)
	}
}

func TestSimpleMA(t *testing.T) {
	t.Parallel()

	ma := NewMA(3)
	assert.Equal(t, "SMA(3)", ma.Name())
	assert.Equal(t, 3, ma.Warmup())
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())

	feed(ma, barsFromCloses(1, 2, 3, 4, 5))
	assert.True(t, ma.Ready())
	assert.InDelta(t, 4.0, ma.Value(), 1e-9) // last 3 closes

	ma.Reset()
	assert.False(t, ma.Ready())
}

func TestExponentialMA(t *testing.T) {
	t.Parallel()

	ema := NewEMA(3)
	feed(ema, barsFromCloses(1, 2, 3))
	assert.True(t, ema.Ready())
	assert.InDelta(t, 2.0, ema.Value(), 1e-9) // seeded with SMA

	// multiplier 2/(3+1) = 0.5
	feed(ema, barsFromCloses(4))
	assert.InDelta(t, 3.0, ema.Value(), 1e-9)
	feed(ema, barsFromCloses(5))
	assert.InDelta(t, 4.0, ema.Value(), 1e-9)
}

func TestRSIWilder(t *testing.T) {
	t.Parallel()

	rsi := NewRSI(3)
	assert.Equal(t, 4, rsi.Warmup())

	feed(rsi, barsFromCloses(10, 11, 12, 11))
	assert.True(t, rsi.Ready())
	// gains 1,1,0 losses 0,0,1 -> RS=2 -> RSI 66.67
	assert.InDelta(t, 66.6667, rsi.Value(), 0.01)
}

func TestRSINoLossesReadsHundred(t *testing.T) {
	t.Parallel()

	rsi := NewRSI(3)
	feed(rsi, barsFromCloses(1, 2, 3, 4))
	assert.True(t, rsi.Ready())
	assert.Equal(t, 100.0, rsi.Value())
}

func TestStochOscillator(t *testing.T) {
	t.Parallel()

	s := NewStoch(3, 2)
	assert.Equal(t, 4, s.Warmup())

	bars := market.Series{
		{Time: time.Now(), High: 10, Low: 8, Close: 9},
		{Time: time.Now(), High: 11, Low: 9, Close: 10},
		{Time: time.Now(), High: 12, Low: 10, Close: 11},
		{Time: time.Now(), High: 12, Low: 10, Close: 12},
	}
	feed(s, bars)
	assert.True(t, s.Ready())

	// window highs 11,12,12 lows 9,10,10 -> K = 100*(12-9)/(12-9) = 100
	assert.InDelta(t, 100.0, s.Value(), 1e-9)
	assert.Greater(t, s.Value(), s.Signal())
}

func TestStochFlatRangeReadsFifty(t *testing.T) {
	t.Parallel()

	s := NewStoch(3, 2)
	flat := market.Bar{Time: time.Now(), High: 5, Low: 5, Close: 5}
	feed(s, market.Series{flat, flat, flat, flat})
	assert.True(t, s.Ready())
	assert.Equal(t, 50.0, s.Value())
}

func TestWilliamsR(t *testing.T) {
	t.Parallel()

	w := NewWilliamsR(3)
	bars := market.Series{
		{Time: time.Now(), High: 10, Low: 8, Close: 9},
		{Time: time.Now(), High: 10, Low: 8, Close: 9},
		{Time: time.Now(), High: 10, Low: 8, Close: 9},
	}
	feed(w, bars)
	assert.True(t, w.Ready())
	assert.InDelta(t, -50.0, w.Value(), 1e-9)

	flat := market.Bar{Time: time.Now(), High: 5, Low: 5, Close: 5}
	w.Reset()
	feed(w, market.Series{flat, flat, flat})
	assert.Equal(t, -50.0, w.Value())
}

func TestROC(t *testing.T) {
	t.Parallel()

	r := NewROC(2)
	assert.Equal(t, 3, r.Warmup())

	feed(r, barsFromCloses(10, 11, 12))
	assert.True(t, r.Ready())
	assert.InDelta(t, 20.0, r.Value(), 1e-9)

	feed(r, barsFromCloses(11))
	assert.InDelta(t, 0.0, r.Value(), 1e-9) // 11 vs 11 two bars ago
}

func TestMACDLinearSettles(t *testing.T) {
	t.Parallel()

	m := NewMACD(2, 3, 2)
	assert.Equal(t, 4, m.Warmup())

	feed(m, barsFromCloses(1, 2, 3, 4, 5, 6))
	assert.True(t, m.Ready())
	assert.InDelta(t, 0.5, m.Value(), 1e-9)
	assert.InDelta(t, 0.5, m.Signal(), 1e-9)
	assert.InDelta(t, 0.0, m.Histogram(), 1e-9)

	prev, ok := m.Prev()
	assert.True(t, ok)
	assert.InDelta(t, 0.5, prev, 1e-9)
}

func TestMACDCrossObservable(t *testing.T) {
	t.Parallel()

	m := NewMACD(2, 4, 2)
	closes := []float64{20, 19, 18, 17, 16, 15, 14, 13, 20, 24, 28}

	crossed := false
	for _, b := range barsFromCloses(closes...) {
		m.Update(b)
		if !m.Ready() {
			continue
		}
		pm, okM := m.Prev()
		ps, okS := m.PrevSignal()
		if okM && okS && pm <= ps && m.Value() > m.Signal() {
			crossed = true
		}
	}
	assert.True(t, crossed, "reversal should produce a bullish signal-line cross")
}

func TestBollingerBands(t *testing.T) {
	t.Parallel()

	b := NewBollinger(3, 2)
	feed(b, barsFromCloses(2, 4, 6))
	assert.True(t, b.Ready())

	// mean 4, population std sqrt(8/3)
	std := math.Sqrt(8.0 / 3.0)
	assert.InDelta(t, 4.0, b.Value(), 1e-9)
	assert.InDelta(t, 4+2*std, b.Upper(), 1e-9)
	assert.InDelta(t, 4-2*std, b.Lower(), 1e-9)
}

func TestATRWilder(t *testing.T) {
	t.Parallel()

	bars := market.Series{
		{Time: time.Now(), High: 10, Low: 8, Close: 9},
		{Time: time.Now(), High: 11, Low: 9, Close: 10},
		{Time: time.Now(), High: 12, Low: 10, Close: 11},
		{Time: time.Now(), High: 11, Low: 9, Close: 10},
		{Time: time.Now(), High: 12, Low: 10, Close: 11},
		{Time: time.Now(), High: 13, Low: 11, Close: 12},
	}

	atr := NewATR(3)
	assert.Equal(t, 4, atr.Warmup())

	feed(atr, bars)
	assert.True(t, atr.Ready())
	assert.InDelta(t, 2.0, atr.Value(), 1e-9) // every TR is 2
}

func TestOBVAccumulation(t *testing.T) {
	t.Parallel()

	o := NewOBV(5)
	bars := market.Series{
		{Time: time.Now(), Close: 10, Volume: 100},
		{Time: time.Now(), Close: 11, Volume: 200},
		{Time: time.Now(), Close: 11, Volume: 300},
		{Time: time.Now(), Close: 10, Volume: 400},
	}
	feed(o, bars)

	assert.True(t, o.Ready())
	assert.InDelta(t, -200.0, o.Value(), 1e-9)
	assert.Equal(t, []float64{0, 200, 200, -200}, o.History(5))
	assert.Equal(t, []float64{200, -200}, o.History(2))
}

func TestMFI(t *testing.T) {
	t.Parallel()

	m := NewMFI(2)
	assert.Equal(t, 3, m.Warmup())

	bars := market.Series{
		{Time: time.Now(), High: 10, Low: 8, Close: 9, Volume: 100},
		{Time: time.Now(), High: 12, Low: 10, Close: 11, Volume: 100},
		{Time: time.Now(), High: 13, Low: 11, Close: 12, Volume: 100},
	}
	feed(m, bars)
	assert.True(t, m.Ready())
	assert.Equal(t, 100.0, m.Value()) // all positive flow

	// tp drops from 12 to 8: window now [+1200, -800]
	m.Update(market.Bar{Time: time.Now(), High: 9, Low: 7, Close: 8, Volume: 100})
	assert.InDelta(t, 60.0, m.Value(), 1e-9)
}

func TestADXSteadyTrend(t *testing.T) {
	t.Parallel()

	adx := NewADX(3)
	assert.Equal(t, 7, adx.Warmup())

	bars := make(market.Series, 10)
	for i := range bars {
		f := float64(i)
		bars[i] = market.Bar{Time: time.Now(), High: f + 3, Low: f + 1, Close: f + 2}
	}
	feed(adx, bars)

	assert.True(t, adx.Ready())
	// one-way movement maxes out DX
	assert.InDelta(t, 100.0, adx.Value(), 1e-6)
}

func TestIndicatorContract(t *testing.T) {
	t.Parallel()

	all := []Indicator{
		NewMA(5), NewEMA(5), NewMACD(3, 5, 2), NewADX(4), NewRSI(5),
		NewStoch(5, 3), NewROC(5), NewWilliamsR(5), NewBollinger(5, 2),
		NewATR(5), NewOBV(5), NewMFI(5), NewVolumeMA(5),
	}
	bars := makeBars(40)

	for _, ind := range all {
		assert.False(t, ind.Ready(), "%s should not be ready before updates", ind.Name())
		assert.Greater(t, ind.Warmup(), 0, "%s warmup", ind.Name())

		feed(ind, bars)
		assert.True(t, ind.Ready(), "%s should be ready after %d bars", ind.Name(), len(bars))

		ind.Reset()
		assert.False(t, ind.Ready(), "%s should not be ready after reset", ind.Name())
		assert.Equal(t, 0.0, ind.Value(), "%s value after reset", ind.Name())
	}
}
