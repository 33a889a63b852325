package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/foresight/forecast"
)

// SQLite is the default Store backend. One writer at a time is plenty
// for a daily forecaster, so the pool is pinned to a single connection.
type SQLite struct {
	db   *sql.DB
	path string
}

func NewSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Append(f forecast.Forecast) (PredictionRecord, error) {
	cats, err := json.Marshal(f.Categories)
	if err != nil {
		return PredictionRecord{}, fmt.Errorf("encode categories: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO predictions
		(id, symbol, created_at, direction, confidence, strength, ref_price, horizon_seconds, categories, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		f.ID, f.Symbol, f.Time.UTC(), string(f.Direction), f.Confidence, f.Strength,
		f.RefPrice, int64(f.Horizon/time.Second), string(cats), string(Pending),
	)
	if err != nil {
		return PredictionRecord{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return PredictionRecord{}, err
	} else if n == 0 {
		return PredictionRecord{}, &DuplicateError{ID: f.ID}
	}

	return s.Get(f.ID)
}

const recordColumns = `id, symbol, created_at, direction, confidence, strength, ref_price,
	horizon_seconds, categories, status, evaluated_at, realized_price, realized_change_pct, outcome`

func (s *SQLite) scanRecord(row interface{ Scan(...any) error }) (PredictionRecord, error) {
	var (
		rec        PredictionRecord
		direction  string
		horizonSec int64
		cats       string
		status     string
		evalAt     sql.NullTime
		realized   sql.NullFloat64
		changePct  sql.NullFloat64
		outcome    sql.NullString
	)

	err := row.Scan(
		&rec.ID, &rec.Symbol, &rec.Time, &direction, &rec.Confidence, &rec.Strength,
		&rec.RefPrice, &horizonSec, &cats, &status, &evalAt, &realized, &changePct, &outcome,
	)
	if err != nil {
		return PredictionRecord{}, err
	}

	rec.Direction = forecast.Direction(direction)
	rec.Horizon = time.Duration(horizonSec) * time.Second
	rec.Status = Status(status)
	if evalAt.Valid {
		rec.EvaluatedAt = evalAt.Time
	}
	rec.RealizedPrice = realized.Float64
	rec.RealizedChangePct = changePct.Float64
	rec.Outcome = Outcome(outcome.String)

	if err := json.Unmarshal([]byte(cats), &rec.Categories); err != nil {
		return PredictionRecord{}, &CorruptStoreError{
			Path:   s.path,
			Reason: fmt.Sprintf("prediction %s has unreadable categories", rec.ID),
			Err:    err,
		}
	}
	return rec, nil
}

func (s *SQLite) Get(id string) (PredictionRecord, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM predictions WHERE id = ?`, id)

	rec, err := s.scanRecord(row)
	if err == sql.ErrNoRows {
		return PredictionRecord{}, fmt.Errorf("prediction %q: %w", id, ErrNotFound)
	}
	return rec, err
}

func (s *SQLite) All() ([]PredictionRecord, error) {
	rows, err := s.db.Query(`SELECT ` + recordColumns + ` FROM predictions ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PredictionRecord
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) PendingDue(now time.Time) ([]PredictionRecord, error) {
	rows, err := s.db.Query(`SELECT `+recordColumns+` FROM predictions WHERE status = ? ORDER BY seq ASC`,
		string(Pending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PredictionRecord
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if rec.Due(now) {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

// MarkEvaluated flips the record to EVALUATED in a single guarded
// UPDATE, so a concurrent or repeated evaluation cannot double-count.
func (s *SQLite) MarkEvaluated(id string, ev Evaluation) (PredictionRecord, error) {
	res, err := s.db.Exec(`
		UPDATE predictions
		SET status = ?, evaluated_at = ?, realized_price = ?, realized_change_pct = ?, outcome = ?
		WHERE id = ? AND status = ?`,
		string(Evaluated), ev.At.UTC(), ev.Price, ev.ChangePct, string(ev.Outcome),
		id, string(Pending),
	)
	if err != nil {
		return PredictionRecord{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return PredictionRecord{}, err
	}
	if n == 0 {
		rec, err := s.Get(id)
		if err != nil {
			return PredictionRecord{}, err
		}
		if rec.Status == Evaluated {
			return PredictionRecord{}, &AlreadyEvaluatedError{ID: id}
		}
		return PredictionRecord{}, fmt.Errorf("prediction %s not evaluated: unexpected status %s", id, rec.Status)
	}

	return s.Get(id)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
