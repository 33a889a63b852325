package indicators

import (
	"fmt"

	"github.com/rustyeddy/foresight/market"
)

// MACD is a streaming Moving Average Convergence Divergence indicator.
// Value() is the MACD line (fast EMA minus slow EMA); Signal() is the
// EMA of the MACD line and Histogram() their difference. Prev() and
// PrevSignal() expose the previous bar's pair for cross detection.
type MACD struct {
	fast   *ExponentialMA
	slow   *ExponentialMA
	signal *ExponentialMA

	fastP, slowP, signalP int

	macd       float64
	prevMACD   float64
	prevSignal float64
	hasPrev    bool
}

// NewMACD creates a MACD with the given fast, slow, and signal periods.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:    NewEMA(fast),
		slow:    NewEMA(slow),
		signal:  NewEMA(signal),
		fastP:   fast,
		slowP:   slow,
		signalP: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastP, m.slowP, m.signalP)
}

func (m *MACD) Warmup() int {
	// The signal EMA starts filling once the slow EMA is ready
	return m.slowP + m.signalP - 1
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.macd = 0
	m.prevMACD = 0
	m.prevSignal = 0
	m.hasPrev = false
}

func (m *MACD) Update(b market.Bar) {
	m.fast.Update(b)
	m.slow.Update(b)

	if !m.slow.Ready() {
		return
	}

	if m.signal.Ready() {
		m.prevMACD = m.macd
		m.prevSignal = m.signal.Value()
		m.hasPrev = true
	}

	m.macd = m.fast.Value() - m.slow.Value()
	m.signal.push(m.macd)
}

func (m *MACD) Ready() bool {
	return m.signal.Ready()
}

// Value returns the MACD line.
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.macd
}

// Signal returns the signal line.
func (m *MACD) Signal() float64 {
	if !m.Ready() {
		return 0
	}
	return m.signal.Value()
}

// Histogram returns MACD minus signal.
func (m *MACD) Histogram() float64 {
	if !m.Ready() {
		return 0
	}
	return m.macd - m.signal.Value()
}

// Prev returns the previous bar's MACD line value. ok is false until a
// full pair has been observed after warmup.
func (m *MACD) Prev() (v float64, ok bool) {
	return m.prevMACD, m.hasPrev
}

// PrevSignal returns the previous bar's signal line value.
func (m *MACD) PrevSignal() (v float64, ok bool) {
	return m.prevSignal, m.hasPrev
}
