//go:build blackbox

package blackbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// writeBarsCSV writes n synthetic daily bars starting 2024-01-02, with
// closes from the supplied curve and OHLC kept consistent around them.
func writeBarsCSV(t *testing.T, path string, n int, close func(i int) float64) {
	t.Helper()

	var b strings.Builder
	b.WriteString("date,open,high,low,close,volume\n")
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := close(i)
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d\n",
			day.AddDate(0, 0, i).Format("2006-01-02"),
			c-0.5, c+1.0, c-1.0, c, 75_000_000+i*1000)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "foresight.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
