package market

import (
	"fmt"
	"sort"
	"time"
)

// Bar represents one daily OHLCV (Open, High, Low, Close, Volume) bar.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ChangePct returns the close-to-close change from prev in percent.
func (b Bar) ChangePct(prev Bar) float64 {
	if prev.Close == 0 {
		return 0
	}
	return (b.Close - prev.Close) / prev.Close * 100
}

// Date returns the bar's calendar date in UTC, truncated to midnight.
func (b Bar) Date() time.Time {
	y, m, d := b.Time.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Series is a chronological run of daily bars, oldest first.
type Series []Bar

// Sort orders the series oldest first. Stable so same-day duplicates
// keep their input order for the dedupe pass.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// Last returns the most recent bar.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// Validate checks the series is usable for indicator math: sorted,
// no duplicate dates, and sane OHLC on every bar.
func (s Series) Validate() error {
	for i, b := range s {
		if b.Time.IsZero() {
			return fmt.Errorf("bar %d: zero timestamp", i)
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d (%s): non-positive price", i, b.Time.Format("2006-01-02"))
		}
		if b.High < b.Low {
			return fmt.Errorf("bar %d (%s): high %.4f below low %.4f", i, b.Time.Format("2006-01-02"), b.High, b.Low)
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): negative volume", i, b.Time.Format("2006-01-02"))
		}
		if i > 0 && !s[i-1].Time.Before(b.Time) {
			return fmt.Errorf("bar %d (%s): not after previous bar", i, b.Time.Format("2006-01-02"))
		}
	}
	return nil
}

// Dedupe drops same-date duplicates keeping the first occurrence.
// The series must already be sorted.
func (s Series) Dedupe() Series {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, b := range s[1:] {
		if b.Date().Equal(out[len(out)-1].Date()) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// TailFrom returns the bars at or after t.
func (s Series) TailFrom(t time.Time) Series {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Time.Before(t) })
	return s[i:]
}
