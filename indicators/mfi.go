package indicators

import (
	"fmt"

	"github.com/rustyeddy/foresight/market"
)

// MFI is a streaming Money Flow Index, a volume-weighted RSI over the
// typical price. Values range 0..100; all-positive flow reads 100.
type MFI struct {
	period  int
	flows   []float64 // signed raw money flow per bar
	prevTP  float64
	hasPrev bool
}

// NewMFI creates a Money Flow Index indicator with the given period.
func NewMFI(period int) *MFI {
	return &MFI{
		period: period,
		flows:  make([]float64, 0, period),
	}
}

func (m *MFI) Name() string {
	return fmt.Sprintf("MFI(%d)", m.period)
}

func (m *MFI) Warmup() int {
	// Need period+1 bars to observe period typical-price changes
	return m.period + 1
}

func (m *MFI) Reset() {
	m.flows = m.flows[:0]
	m.prevTP = 0
	m.hasPrev = false
}

func (m *MFI) Update(b market.Bar) {
	tp := (b.High + b.Low + b.Close) / 3

	if !m.hasPrev {
		m.prevTP = tp
		m.hasPrev = true
		return
	}

	raw := tp * b.Volume
	switch {
	case tp > m.prevTP:
		m.flows = append(m.flows, raw)
	case tp < m.prevTP:
		m.flows = append(m.flows, -raw)
	default:
		m.flows = append(m.flows, 0)
	}
	m.prevTP = tp

	if len(m.flows) > m.period {
		m.flows = m.flows[1:]
	}
}

func (m *MFI) Ready() bool {
	return len(m.flows) >= m.period
}

func (m *MFI) Value() float64 {
	if !m.Ready() {
		return 0
	}

	var pos, neg float64
	for _, f := range m.flows {
		if f > 0 {
			pos += f
		} else {
			neg -= f
		}
	}
	if neg == 0 {
		return 100
	}
	return 100 - 100/(1+pos/neg)
}
