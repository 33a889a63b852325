package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSV layout: date,open,high,low,close,volume with a header row.
// Dates are 2006-01-02 and taken as UTC midnight.
const csvDateLayout = "2006-01-02"

var csvHeader = []string{"date", "open", "high", "low", "close", "volume"}

// ReadCSV parses daily bars from r. The header row is required but
// matched case-insensitively so files from other tools load as-is.
// Extra trailing columns are ignored.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 6 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("unexpected header %q, want date,open,high,low,close,volume", strings.Join(header, ","))
	}

	var bars Series
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("line %d: want 6 fields, got %d", line, len(rec))
		}

		t, err := time.ParseInLocation(csvDateLayout, strings.TrimSpace(rec[0]), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q: %w", line, rec[0], err)
		}

		var vals [5]float64
		for i := 0; i < 5; i++ {
			f := strings.TrimSpace(rec[i+1])
			if f == "" {
				return nil, fmt.Errorf("line %d: empty %s", line, csvHeader[i+1])
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s %q: %w", line, csvHeader[i+1], f, err)
			}
			vals[i] = v
		}

		bars = append(bars, Bar{
			Time:   t,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	bars.Sort()
	bars = bars.Dedupe()
	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bar data: %w", err)
	}
	return bars, nil
}

// LoadCSV reads daily bars from a file.
func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// WriteCSV writes the series with the standard header.
func WriteCSV(w io.Writer, bars Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			b.Time.UTC().Format(csvDateLayout),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the series to path, overwriting any existing file.
func SaveCSV(path string, bars Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, bars); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
