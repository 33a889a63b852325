// Package indicators provides streaming technical analysis indicators
// computed over closed daily bars.
package indicators

import "github.com/rustyeddy/foresight/market"

// Indicator computes a single streaming value from daily bars.
// It is deterministic: the same bars in the same order always produce
// the same value.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	// (Some indicators may become ready earlier; that's fine.)
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* daily bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. If !Ready(), it returns 0 —
	// callers should always check Ready().
	Value() float64
}
