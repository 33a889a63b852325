package indicators

import (
	"fmt"

	"github.com/rustyeddy/foresight/market"
)

// SimpleMA is a streaming Simple Moving Average over closes.
type SimpleMA struct {
	period int
	window []float64
}

// NewMA creates a new Simple Moving Average indicator with the given period.
func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
}

func (m *SimpleMA) Update(b market.Bar) {
	m.window = append(m.window, b.Close)
	if len(m.window) > m.period {
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Ready() bool {
	return len(m.window) >= m.period
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	sum := 0.0
	for _, v := range m.window {
		sum += v
	}
	return sum / float64(len(m.window))
}

// ExponentialMA is a streaming Exponential Moving Average over closes,
// seeded with the SMA of the first period values.
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates a new Exponential Moving Average indicator with the given period.
func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *ExponentialMA) Warmup() int {
	return e.period
}

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(b market.Bar) {
	e.push(b.Close)
}

func (e *ExponentialMA) push(v float64) {
	if e.count < e.period {
		e.warmupSum += v
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (v-e.ema)*e.multiplier + e.ema
}

func (e *ExponentialMA) Ready() bool {
	return e.count >= e.period
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}

// VolumeMA is a streaming Simple Moving Average over volume.
type VolumeMA struct {
	period int
	window []float64
}

// NewVolumeMA creates a volume SMA with the given period.
func NewVolumeMA(period int) *VolumeMA {
	return &VolumeMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *VolumeMA) Name() string {
	return fmt.Sprintf("VolSMA(%d)", m.period)
}

func (m *VolumeMA) Warmup() int {
	return m.period
}

func (m *VolumeMA) Reset() {
	m.window = m.window[:0]
}

func (m *VolumeMA) Update(b market.Bar) {
	m.window = append(m.window, b.Volume)
	if len(m.window) > m.period {
		m.window = m.window[1:]
	}
}

func (m *VolumeMA) Ready() bool {
	return len(m.window) >= m.period
}

func (m *VolumeMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	sum := 0.0
	for _, v := range m.window {
		sum += v
	}
	return sum / float64(len(m.window))
}

// rollingMean averages the last period raw values pushed into it.
// Used to build derived series like ATR-of-ATR and %D without going
// through bars.
type rollingMean struct {
	period int
	window []float64
}

func newRollingMean(period int) *rollingMean {
	return &rollingMean{period: period, window: make([]float64, 0, period)}
}

func (r *rollingMean) push(v float64) {
	r.window = append(r.window, v)
	if len(r.window) > r.period {
		r.window = r.window[1:]
	}
}

func (r *rollingMean) ready() bool {
	return len(r.window) >= r.period
}

func (r *rollingMean) reset() {
	r.window = r.window[:0]
}

func (r *rollingMean) value() float64 {
	if len(r.window) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range r.window {
		sum += v
	}
	return sum / float64(len(r.window))
}
