package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/foresight/market"
)

// ADX implements Wilder's Average Directional Index (trend strength).
// The value is non-directional: high ADX in a downtrend reads the same
// as high ADX in an uptrend.
type ADX struct {
	period int

	prev     market.Bar
	havePrev bool

	// Wilder-smoothed values after warmup
	trN  float64
	pdmN float64
	mdmN float64

	adx     float64
	dxSum   float64
	dxCount int

	// count of bars processed (including the first prev seed)
	count int
	ready bool
}

func NewADX(period int) *ADX {
	return &ADX{period: period}
}

func (a *ADX) Name() string {
	return fmt.Sprintf("ADX(%d)", a.period)
}

// Warmup is 2*period+1 bars:
// period bars to initialize smoothed TR/+DM/-DM, then period DX values
// to initialize ADX, plus the prev seed.
func (a *ADX) Warmup() int {
	return 2*a.period + 1
}

func (a *ADX) Reset() {
	a.havePrev = false
	a.trN = 0
	a.pdmN = 0
	a.mdmN = 0
	a.adx = 0
	a.dxSum = 0
	a.dxCount = 0
	a.count = 0
	a.ready = false
}

func (a *ADX) Ready() bool {
	return a.ready
}

func (a *ADX) Value() float64 {
	if !a.ready {
		return 0
	}
	return a.adx
}

func (a *ADX) Update(b market.Bar) {
	// Seed previous bar
	if !a.havePrev {
		a.prev = b
		a.havePrev = true
		a.count = 1
		return
	}

	// Directional movement from current vs previous highs/lows
	upMove := b.High - a.prev.High
	downMove := a.prev.Low - b.Low

	var pdm, mdm float64
	if upMove > downMove && upMove > 0 {
		pdm = upMove
	}
	if downMove > upMove && downMove > 0 {
		mdm = downMove
	}

	tr := trueRange(b, a.prev)

	a.prev = b
	a.count++

	// Warmup phase A: accumulate initial averages up to period.
	// Samples for TR/DM begin on the second bar, so the phase ends at
	// count == period+1.
	if a.count <= a.period+1 {
		a.trN += tr
		a.pdmN += pdm
		a.mdmN += mdm

		if a.count == a.period+1 {
			p := float64(a.period)
			a.trN /= p
			a.pdmN /= p
			a.mdmN /= p
		}
		return
	}

	// Wilder smoothing for TR/+DM/-DM
	p := float64(a.period)
	a.trN = (a.trN*(p-1) + tr) / p
	a.pdmN = (a.pdmN*(p-1) + pdm) / p
	a.mdmN = (a.mdmN*(p-1) + mdm) / p

	if a.trN == 0 {
		return
	}

	pdi := 100 * (a.pdmN / a.trN)
	mdi := 100 * (a.mdmN / a.trN)
	den := pdi + mdi
	if den == 0 {
		return
	}

	dx := 100 * math.Abs(pdi-mdi) / den

	// Warmup phase B: seed ADX with the average of the first period DX
	// values. Degenerate bars (zero range or zero directional movement)
	// produce no DX sample, so count samples rather than bars.
	if !a.ready {
		a.dxSum += dx
		a.dxCount++
		if a.dxCount >= a.period {
			a.adx = a.dxSum / p
			a.ready = true
		}
		return
	}

	// Wilder smoothing for ADX
	a.adx = (a.adx*(p-1) + dx) / p
}
