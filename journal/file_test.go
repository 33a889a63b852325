package journal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/foresight/forecast"
)

func newTestFile(t *testing.T) (*File, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "predictions.json")
	f, err := NewFile(path)
	assert.NoError(t, err)

	return f, path
}

func TestFileAppendGet(t *testing.T) {
	t.Parallel()

	f, path := newTestFile(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	rec, err := f.Append(testForecast("SPY-20250602", day))
	assert.NoError(t, err)
	assert.Equal(t, Pending, rec.Status)

	got, err := f.Get("SPY-20250602")
	assert.NoError(t, err)
	assert.Equal(t, forecast.Up, got.Direction)
	assert.InDelta(t, 510.25, got.RefPrice, 1e-9)

	// every append lands on disk
	_, err = os.Stat(path)
	assert.NoError(t, err)

	_, err = f.Get("SPY-19990101")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileDuplicate(t *testing.T) {
	t.Parallel()

	f, _ := newTestFile(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	_, err := f.Append(testForecast("SPY-20250602", day))
	assert.NoError(t, err)

	_, err = f.Append(testForecast("SPY-20250602", day))
	var dup *DuplicateError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "SPY-20250602", dup.ID)
}

func TestFileReopen(t *testing.T) {
	t.Parallel()

	f, path := newTestFile(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	_, err := f.Append(testForecast("SPY-20250602", day))
	assert.NoError(t, err)
	_, err = f.Append(testForecast("SPY-20250603", day.AddDate(0, 0, 1)))
	assert.NoError(t, err)

	at := day.Add(25 * time.Hour)
	_, err = f.MarkEvaluated("SPY-20250602", Evaluation{
		At: at, Price: 515.40, ChangePct: 1.0093, Outcome: Correct,
	})
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	reopened, err := NewFile(path)
	assert.NoError(t, err)

	recs, err := reopened.All()
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "SPY-20250602", recs[0].ID)
	assert.Equal(t, Evaluated, recs[0].Status)
	assert.Equal(t, Correct, recs[0].Outcome)
	assert.True(t, recs[0].EvaluatedAt.Equal(at))
	assert.Equal(t, Pending, recs[1].Status)
}

func TestFileMarkEvaluated(t *testing.T) {
	t.Parallel()

	f, _ := newTestFile(t)

	day := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	_, err := f.Append(testForecast("SPY-20250602", day))
	assert.NoError(t, err)

	rec, err := f.MarkEvaluated("SPY-20250602", Evaluation{
		At: day.Add(25 * time.Hour), Price: 505.0, ChangePct: -1.03, Outcome: Incorrect,
	})
	assert.NoError(t, err)
	assert.Equal(t, Evaluated, rec.Status)
	assert.Equal(t, Incorrect, rec.Outcome)

	_, err = f.MarkEvaluated("SPY-20250602", Evaluation{
		At: day.Add(26 * time.Hour), Price: 520.0, ChangePct: 1.9, Outcome: Correct,
	})
	var already *AlreadyEvaluatedError
	assert.True(t, errors.As(err, &already))

	_, err = f.MarkEvaluated("SPY-19990101", Evaluation{Outcome: Correct})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFilePendingDue(t *testing.T) {
	t.Parallel()

	f, _ := newTestFile(t)

	now := time.Date(2025, 6, 4, 21, 0, 0, 0, time.UTC)
	_, err := f.Append(testForecast("SPY-20250602", now.Add(-48*time.Hour)))
	assert.NoError(t, err)
	_, err = f.Append(testForecast("SPY-20250604", now))
	assert.NoError(t, err)

	due, err := f.PendingDue(now)
	assert.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, "SPY-20250602", due[0].ID)
}

func TestFileLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "unparseable json",
			body: `{"predictions": [`,
		},
		{
			name: "missing id",
			body: `{"predictions": [{"symbol": "SPY", "status": "PENDING"}]}`,
		},
		{
			name: "duplicate id",
			body: `{"predictions": [
				{"id": "SPY-20250602", "symbol": "SPY", "status": "PENDING"},
				{"id": "SPY-20250602", "symbol": "SPY", "status": "PENDING"}
			]}`,
		},
		{
			name: "unknown status",
			body: `{"predictions": [{"id": "SPY-20250602", "symbol": "SPY", "status": "MAYBE"}]}`,
		},
		{
			name: "evaluated without outcome",
			body: `{"predictions": [{"id": "SPY-20250602", "symbol": "SPY", "status": "EVALUATED"}]}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "predictions.json")
			assert.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := NewFile(path)
			var corrupt *CorruptStoreError
			assert.True(t, errors.As(err, &corrupt))
			assert.Equal(t, path, corrupt.Path)
		})
	}
}

func TestFileIgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	body := `{
		"schema_version": 3,
		"predictions": [
			{
				"id": "SPY-20250602",
				"symbol": "SPY",
				"time": "2025-06-02T21:00:00Z",
				"direction": "UP",
				"confidence": 70.0,
				"strength": 0.5,
				"ref_price": 510.0,
				"horizon": 86400000000000,
				"status": "PENDING",
				"annotations": {"source": "newer tool"}
			}
		]
	}`

	path := filepath.Join(t.TempDir(), "predictions.json")
	assert.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	f, err := NewFile(path)
	assert.NoError(t, err)

	got, err := f.Get("SPY-20250602")
	assert.NoError(t, err)
	assert.Equal(t, forecast.Up, got.Direction)
	assert.Equal(t, 24*time.Hour, got.Horizon)
}

func TestFileMissingStartsEmpty(t *testing.T) {
	t.Parallel()

	f, _ := newTestFile(t)

	recs, err := f.All()
	assert.NoError(t, err)
	assert.Empty(t, recs)

	due, err := f.PendingDue(time.Now())
	assert.NoError(t, err)
	assert.Empty(t, due)
}
