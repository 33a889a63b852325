package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/foresight/market"
)

// Bollinger is a streaming Bollinger Bands indicator. Value() is the
// middle band (the SMA); Upper() and Lower() are the bands at width
// standard deviations (population) around it.
type Bollinger struct {
	period int
	width  float64
	window []float64
}

// NewBollinger creates Bollinger Bands with the given period and band
// width in standard deviations.
func NewBollinger(period int, width float64) *Bollinger {
	return &Bollinger{
		period: period,
		width:  width,
		window: make([]float64, 0, period),
	}
}

func (b *Bollinger) Name() string {
	return fmt.Sprintf("BOLL(%d,%.1f)", b.period, b.width)
}

func (b *Bollinger) Warmup() int {
	return b.period
}

func (b *Bollinger) Reset() {
	b.window = b.window[:0]
}

func (b *Bollinger) Update(bar market.Bar) {
	b.window = append(b.window, bar.Close)
	if len(b.window) > b.period {
		b.window = b.window[1:]
	}
}

func (b *Bollinger) Ready() bool {
	return len(b.window) >= b.period
}

func (b *Bollinger) mean() float64 {
	sum := 0.0
	for _, v := range b.window {
		sum += v
	}
	return sum / float64(len(b.window))
}

func (b *Bollinger) stddev() float64 {
	mean := b.mean()
	var sq float64
	for _, v := range b.window {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(b.window)))
}

// Value returns the middle band.
func (b *Bollinger) Value() float64 {
	if !b.Ready() {
		return 0
	}
	return b.mean()
}

// Upper returns the upper band.
func (b *Bollinger) Upper() float64 {
	if !b.Ready() {
		return 0
	}
	return b.mean() + b.width*b.stddev()
}

// Lower returns the lower band.
func (b *Bollinger) Lower() float64 {
	if !b.Ready() {
		return 0
	}
	return b.mean() - b.width*b.stddev()
}
