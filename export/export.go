// Package export writes the JSON artifacts a dashboard polls and the
// plain-text renderings the CLI prints.
package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/journal"
)

const (
	// LatestFile carries the newest forecast plus the indicator values
	// behind it.
	LatestFile = "forecast_latest.json"
	// HistoryFile carries the scorecard plus the recent predictions.
	HistoryFile = "predictions_data.json"
	// OrgFile carries the Org-mode journal dump when requested.
	OrgFile = "predictions.org"
)

// LatestDoc is the LatestFile document.
type LatestDoc struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Forecast    forecast.Forecast  `json:"forecast"`
	Indicators  map[string]float64 `json:"indicators"`
}

// HistoryDoc is the HistoryFile document. Predictions hold the most
// recent records, oldest first.
type HistoryDoc struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Stats       journal.Stats              `json:"stats"`
	Predictions []journal.PredictionRecord `json:"predictions"`
}

// WriteLatest writes LatestFile under dir and returns the full path.
func WriteLatest(dir string, f forecast.Forecast, snap forecast.Snapshot) (string, error) {
	doc := LatestDoc{
		GeneratedAt: time.Now().UTC(),
		Forecast:    f,
		Indicators:  snap.Values(),
	}
	return writeFile(dir, LatestFile, marshalJSON(doc))
}

// WriteHistory writes HistoryFile under dir, trimmed to the most recent
// `recent` records, and returns the full path. recent <= 0 keeps all.
func WriteHistory(dir string, st journal.Stats, recs []journal.PredictionRecord, recent int) (string, error) {
	if recent > 0 && len(recs) > recent {
		recs = recs[len(recs)-recent:]
	}
	doc := HistoryDoc{
		GeneratedAt: time.Now().UTC(),
		Stats:       st,
		Predictions: recs,
	}
	return writeFile(dir, HistoryFile, marshalJSON(doc))
}

// WriteOrg writes the full history as an Org-mode journal under dir and
// returns the full path.
func WriteOrg(dir string, recs []journal.PredictionRecord) (string, error) {
	return writeFile(dir, OrgFile, func() ([]byte, error) {
		return []byte(FormatPredictionsOrg(recs) + "\n"), nil
	})
}

func marshalJSON(doc any) func() ([]byte, error) {
	return func() ([]byte, error) {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// writeFile lands the artifact atomically so a dashboard polling the
// directory never reads a half-written file.
func writeFile(dir, name string, marshal func() ([]byte, error)) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating export dir")
	}
	data, err := marshal()
	if err != nil {
		return "", errors.Wrapf(err, "rendering %s", name)
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}
