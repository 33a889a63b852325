package journal

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/foresight/forecast"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "predictions.db")

	s, err := NewSQLite(path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func testForecast(id string, day time.Time) forecast.Forecast {
	return forecast.Forecast{
		ID:         id,
		Symbol:     "SPY",
		Time:       day,
		Direction:  forecast.Up,
		Confidence: 71.5,
		Strength:   0.52,
		Categories: []forecast.CategorySignal{
			{
				Category: forecast.Trend,
				Modifier: 1.1,
				Note:     "ADX 27.5 scales trend vote by 1.10",
				Signals: []forecast.Signal{
					{Indicator: "SMA stack", Strength: 1, Rationale: "close above SMA20 above SMA50"},
					{Indicator: "MACD", Strength: 0.5, Rationale: "MACD above signal"},
				},
			},
			{
				Category: forecast.Momentum,
				Signals: []forecast.Signal{
					{Indicator: "RSI(14)", Strength: 0.25, Rationale: "RSI 63.0 in bullish zone"},
				},
			},
		},
		RefPrice: 510.25,
		Horizon:  24 * time.Hour,
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	assert.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='predictions'`).Scan(&name)
	assert.NoError(t, err)
	assert.Equal(t, "predictions", name)
}

func TestSQLiteAppendGet(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	f := testForecast("SPY-20250602", day)

	rec, err := s.Append(f)
	assert.NoError(t, err)
	assert.Equal(t, Pending, rec.Status)
	assert.Equal(t, "SPY-20250602", rec.ID)

	got, err := s.Get("SPY-20250602")
	assert.NoError(t, err)
	assert.Equal(t, f.Symbol, got.Symbol)
	assert.Equal(t, f.Direction, got.Direction)
	assert.InDelta(t, f.Confidence, got.Confidence, 1e-9)
	assert.InDelta(t, f.Strength, got.Strength, 1e-9)
	assert.InDelta(t, f.RefPrice, got.RefPrice, 1e-9)
	assert.Equal(t, f.Horizon, got.Horizon)
	assert.True(t, got.Time.Equal(day))
	assert.Equal(t, Pending, got.Status)
	assert.Empty(t, got.Outcome)

	// categories survive the JSON column round trip
	assert.Len(t, got.Categories, 2)
	assert.Equal(t, forecast.Trend, got.Categories[0].Category)
	assert.Len(t, got.Categories[0].Signals, 2)
	assert.Equal(t, "SMA stack", got.Categories[0].Signals[0].Indicator)
	assert.InDelta(t, 1.1, got.Categories[0].Modifier, 1e-9)
	assert.Equal(t, forecast.Momentum, got.Categories[1].Category)
}

func TestSQLiteGetMissing(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	_, err := s.Get("SPY-19990101")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteAppendDuplicate(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	_, err := s.Append(testForecast("SPY-20250602", day))
	assert.NoError(t, err)

	_, err = s.Append(testForecast("SPY-20250602", day))
	var dup *DuplicateError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "SPY-20250602", dup.ID)

	// the original record is untouched
	recs, err := s.All()
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestSQLitePendingDue(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	now := time.Date(2025, 6, 4, 21, 0, 0, 0, time.UTC)

	_, err := s.Append(testForecast("SPY-20250602", now.Add(-48*time.Hour)))
	assert.NoError(t, err)
	_, err = s.Append(testForecast("SPY-20250603", now.Add(-24*time.Hour)))
	assert.NoError(t, err)
	_, err = s.Append(testForecast("SPY-20250604", now)) // not mature yet
	assert.NoError(t, err)

	due, err := s.PendingDue(now)
	assert.NoError(t, err)
	assert.Len(t, due, 2)
	assert.Equal(t, "SPY-20250602", due[0].ID)
	assert.Equal(t, "SPY-20250603", due[1].ID)

	// evaluating one removes it from the due set
	_, err = s.MarkEvaluated("SPY-20250602", Evaluation{
		At: now, Price: 512.0, ChangePct: 0.34, Outcome: Correct,
	})
	assert.NoError(t, err)

	due, err = s.PendingDue(now)
	assert.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, "SPY-20250603", due[0].ID)
}

func TestSQLiteMarkEvaluated(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	_, err := s.Append(testForecast("SPY-20250602", day))
	assert.NoError(t, err)

	at := day.Add(25 * time.Hour)
	rec, err := s.MarkEvaluated("SPY-20250602", Evaluation{
		At:        at,
		Price:     515.40,
		ChangePct: 1.0093,
		Outcome:   Correct,
	})
	assert.NoError(t, err)
	assert.Equal(t, Evaluated, rec.Status)
	assert.Equal(t, Correct, rec.Outcome)
	assert.InDelta(t, 515.40, rec.RealizedPrice, 1e-9)
	assert.InDelta(t, 1.0093, rec.RealizedChangePct, 1e-9)
	assert.True(t, rec.EvaluatedAt.Equal(at))

	// a second verdict on the same record is rejected
	_, err = s.MarkEvaluated("SPY-20250602", Evaluation{
		At: at, Price: 500, ChangePct: -2, Outcome: Incorrect,
	})
	var already *AlreadyEvaluatedError
	assert.True(t, errors.As(err, &already))
	assert.Equal(t, "SPY-20250602", already.ID)

	// the stored verdict did not change
	got, err := s.Get("SPY-20250602")
	assert.NoError(t, err)
	assert.Equal(t, Correct, got.Outcome)
	assert.InDelta(t, 515.40, got.RealizedPrice, 1e-9)
}

func TestSQLiteMarkEvaluatedMissing(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	_, err := s.MarkEvaluated("SPY-19990101", Evaluation{
		At: time.Now(), Price: 100, Outcome: Correct,
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteAllInsertionOrder(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	for i, id := range []string{"SPY-20250602", "SPY-20250603", "SPY-20250604"} {
		_, err := s.Append(testForecast(id, day.AddDate(0, 0, i)))
		assert.NoError(t, err)
	}

	recs, err := s.All()
	assert.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, "SPY-20250602", recs[0].ID)
	assert.Equal(t, "SPY-20250603", recs[1].ID)
	assert.Equal(t, "SPY-20250604", recs[2].ID)
}

func TestSQLiteReopen(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	_, err := s.Append(testForecast("SPY-20250602", day))
	assert.NoError(t, err)
	assert.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get("SPY-20250602")
	assert.NoError(t, err)
	assert.Equal(t, forecast.Up, got.Direction)
	assert.Equal(t, Pending, got.Status)
}
