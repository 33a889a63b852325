// journal/file.go
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/foresight/forecast"
)

// File is a plain-JSON Store backend: the whole history lives in one
// document and every mutation rewrites it atomically (temp file then
// rename). Suited to small daily histories and to deployments where a
// readable artifact matters more than query speed.
type File struct {
	path string
	recs []PredictionRecord
	byID map[string]int
}

// fileDoc is the on-disk shape. Unknown fields in an existing document
// are ignored on load so newer tools can extend it.
type fileDoc struct {
	Predictions []PredictionRecord `json:"predictions"`
}

func NewFile(path string) (*File, error) {
	f := &File{
		path: path,
		byID: make(map[string]int),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptStoreError{Path: path, Reason: "unparseable history", Err: err}
	}

	for i, rec := range doc.Predictions {
		if rec.ID == "" {
			return nil, &CorruptStoreError{Path: path, Reason: fmt.Sprintf("record %d has no id", i)}
		}
		if _, dup := f.byID[rec.ID]; dup {
			return nil, &CorruptStoreError{Path: path, Reason: fmt.Sprintf("duplicate prediction id %s", rec.ID)}
		}
		switch rec.Status {
		case Pending, Evaluated:
		default:
			return nil, &CorruptStoreError{Path: path, Reason: fmt.Sprintf("prediction %s has unknown status %q", rec.ID, rec.Status)}
		}
		if rec.Status == Evaluated && rec.Outcome == "" {
			return nil, &CorruptStoreError{Path: path, Reason: fmt.Sprintf("prediction %s evaluated without an outcome", rec.ID)}
		}
		f.byID[rec.ID] = i
	}
	f.recs = doc.Predictions

	return f, nil
}

// save rewrites the document through a temp file in the same directory
// so a crash mid-write never truncates the history.
func (f *File) save() error {
	data, err := json.MarshalIndent(fileDoc{Predictions: f.recs}, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".predictions-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *File) Append(fc forecast.Forecast) (PredictionRecord, error) {
	if _, dup := f.byID[fc.ID]; dup {
		return PredictionRecord{}, &DuplicateError{ID: fc.ID}
	}

	rec := PredictionRecord{Forecast: fc, Status: Pending}
	f.recs = append(f.recs, rec)
	f.byID[fc.ID] = len(f.recs) - 1

	if err := f.save(); err != nil {
		return PredictionRecord{}, err
	}
	return rec, nil
}

func (f *File) Get(id string) (PredictionRecord, error) {
	i, ok := f.byID[id]
	if !ok {
		return PredictionRecord{}, fmt.Errorf("prediction %q: %w", id, ErrNotFound)
	}
	return f.recs[i], nil
}

func (f *File) All() ([]PredictionRecord, error) {
	out := make([]PredictionRecord, len(f.recs))
	copy(out, f.recs)
	return out, nil
}

func (f *File) PendingDue(now time.Time) ([]PredictionRecord, error) {
	var out []PredictionRecord
	for _, rec := range f.recs {
		if rec.Due(now) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *File) MarkEvaluated(id string, ev Evaluation) (PredictionRecord, error) {
	i, ok := f.byID[id]
	if !ok {
		return PredictionRecord{}, fmt.Errorf("prediction %q: %w", id, ErrNotFound)
	}
	if f.recs[i].Status == Evaluated {
		return PredictionRecord{}, &AlreadyEvaluatedError{ID: id}
	}

	rec := f.recs[i]
	rec.Status = Evaluated
	rec.EvaluatedAt = ev.At.UTC()
	rec.RealizedPrice = ev.Price
	rec.RealizedChangePct = ev.ChangePct
	rec.Outcome = ev.Outcome

	// keep memory untouched unless the write lands
	prev := f.recs[i]
	f.recs[i] = rec
	if err := f.save(); err != nil {
		f.recs[i] = prev
		return PredictionRecord{}, err
	}
	return rec, nil
}

func (f *File) Close() error {
	return nil
}
