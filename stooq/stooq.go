// Package stooq fetches daily OHLCV history and delayed quotes from
// stooq.com's public CSV endpoints. No API key is needed; the service
// rate-limits by IP, so callers should cache bars on disk and let the
// client's retry policy handle the occasional hiccup.
package stooq

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/foresight/market"
)

// DefaultBaseURL is stooq's public site root.
const DefaultBaseURL = "https://stooq.com"

const (
	historyPath = "/q/d/l/"
	quotePath   = "/q/l/"

	stooqDate = "2006-01-02"
)

var log = logrus.WithField("component", "stooq")

// ErrNoData means stooq answered but had nothing for the request:
// unknown ticker, delisted symbol, or an empty date range.
var ErrNoData = errors.New("stooq: no data")

// Client talks to stooq. It is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// NewClient returns a client against baseURL, or the public site when
// baseURL is empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("User-Agent", "foresight/1.0")

	return &Client{http: httpc}
}

// normalizeSymbol maps a plain US ticker to stooq's form: lowercase
// with a .us suffix. Symbols that already carry a market suffix or an
// index prefix pass through unchanged.
func normalizeSymbol(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if s == "" || strings.ContainsAny(s, ".^") {
		return s
	}
	return s + ".us"
}

// DailyBars fetches the daily history for symbol over [from, to],
// inclusive, oldest first.
func (c *Client) DailyBars(ctx context.Context, symbol string, from, to time.Time) (market.Series, error) {
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if from.After(to) {
		return nil, errors.Errorf("bad range: %s after %s", from.Format(stooqDate), to.Format(stooqDate))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s":  normalizeSymbol(symbol),
			"d1": from.UTC().Format("20060102"),
			"d2": to.UTC().Format("20060102"),
			"i":  "d",
		}).
		Get(historyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s history", symbol)
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("stooq: %s fetching %s history", resp.Status(), symbol)
	}

	body := resp.Body()
	head := strings.ToLower(strings.TrimSpace(string(body)))
	switch {
	case strings.HasPrefix(head, "date,"):
	case strings.HasPrefix(head, "no data"):
		return nil, errors.Wrap(ErrNoData, symbol)
	default:
		if len(head) > 64 {
			head = head[:64]
		}
		return nil, errors.Errorf("stooq: unexpected reply for %s: %q", symbol, head)
	}

	bars, err := market.ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s history", symbol)
	}

	log.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   len(bars),
	}).Debug("fetched daily history")

	return bars, nil
}

// Quote is stooq's delayed snapshot for one symbol.
type Quote struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Latest fetches the delayed quote for symbol.
func (c *Client) Latest(ctx context.Context, symbol string) (Quote, error) {
	if symbol == "" {
		return Quote{}, errors.New("symbol is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s": normalizeSymbol(symbol),
			"f": "sd2t2ohlcv",
			"h": "",
			"e": "csv",
		}).
		Get(quotePath)
	if err != nil {
		return Quote{}, errors.Wrapf(err, "fetching %s quote", symbol)
	}
	if !resp.IsSuccess() {
		return Quote{}, errors.Errorf("stooq: %s fetching %s quote", resp.Status(), symbol)
	}

	q, err := parseQuoteCSV(resp.Body())
	if err != nil {
		return Quote{}, errors.Wrapf(err, "%s quote", symbol)
	}
	return q, nil
}

// LatestClose fetches the most recent close for symbol.
func (c *Client) LatestClose(ctx context.Context, symbol string) (float64, error) {
	q, err := c.Latest(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return q.Close, nil
}

// CloseAt returns the first daily close on or after the given moment,
// looking up to a week ahead so weekend and holiday maturities resolve
// to the next session. It satisfies journal.PriceFunc when wrapped in a
// closure carrying the context.
func (c *Client) CloseAt(ctx context.Context, symbol string, at time.Time) (float64, error) {
	day := at.UTC()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	bars, err := c.DailyBars(ctx, symbol, day, day.AddDate(0, 0, 7))
	if err != nil {
		return 0, err
	}
	for _, b := range bars {
		if !b.Date().Before(day) {
			return b.Close, nil
		}
	}
	return 0, errors.Wrapf(ErrNoData, "%s close at %s", symbol, day.Format(stooqDate))
}

// parseQuoteCSV decodes the /q/l/ snapshot format:
//
//	Symbol,Date,Time,Open,High,Low,Close,Volume
//	SPY.US,2025-06-02,22:00:08,587.5,592.1,586.2,589.39,45231234
//
// Unknown symbols come back with N/D in every data column.
func parseQuoteCSV(body []byte) (Quote, error) {
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		return Quote{}, err
	}
	if len(records) < 2 {
		return Quote{}, ErrNoData
	}
	row := records[1]
	if len(row) < 8 {
		return Quote{}, errors.Errorf("short quote row: %d fields", len(row))
	}
	if row[1] == "N/D" || row[6] == "N/D" {
		return Quote{}, ErrNoData
	}

	at, err := time.ParseInLocation("2006-01-02 15:04:05", row[1]+" "+row[2], time.UTC)
	if err != nil {
		return Quote{}, errors.Wrap(err, "parsing quote time")
	}

	q := Quote{Symbol: row[0], Time: at}
	for i, dst := range []*float64{&q.Open, &q.High, &q.Low, &q.Close, &q.Volume} {
		v, err := strconv.ParseFloat(row[3+i], 64)
		if err != nil {
			return Quote{}, errors.Wrapf(err, "parsing quote field %d", 3+i)
		}
		*dst = v
	}
	return q, nil
}
