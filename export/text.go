package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/journal"
)

// FormatForecastText renders a forecast for the terminal: the call on
// top, then each category vote with the signals behind it.
func FormatForecastText(f forecast.Forecast) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s  confidence %.1f  strength %+.3f\n",
		f.ID, f.Direction, f.Confidence, f.Strength)
	fmt.Fprintf(&b, "ref close %.2f  due %s\n",
		f.RefPrice, f.DueAt().UTC().Format(time.RFC3339))

	for _, cat := range f.Categories {
		b.WriteString("\n")
		if cat.Modifier != 0 && cat.Modifier != 1 {
			fmt.Fprintf(&b, "%s vote %+.2f (x%.2f)\n", cat.Category, cat.Strength(), cat.Modifier)
		} else {
			fmt.Fprintf(&b, "%s vote %+.2f\n", cat.Category, cat.Strength())
		}
		if cat.Note != "" {
			fmt.Fprintf(&b, "  %s\n", cat.Note)
		}
		for _, sig := range cat.Signals {
			fmt.Fprintf(&b, "  %+5.2f  %-12s %s\n", sig.Strength, sig.Indicator, sig.Rationale)
		}
	}

	return b.String()
}

// FormatStatsText renders the scorecard for the terminal.
func FormatStatsText(st journal.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "predictions %d  pending %d  evaluated %d\n",
		st.Total, st.Pending, st.Evaluated)
	fmt.Fprintf(&b, "correct %d  neutral-correct %d  incorrect %d\n",
		st.Correct, st.NeutralCorrect, st.Incorrect)
	fmt.Fprintf(&b, "accuracy %.1f%%\n", st.Accuracy*100)

	// fixed order so output is stable
	order := []forecast.Direction{forecast.Up, forecast.Down, forecast.Neutral}
	shown := false
	for _, d := range order {
		ds, ok := st.ByDirection[d]
		if !ok || ds.Total == 0 {
			continue
		}
		if !shown {
			b.WriteString("\nby direction\n")
			shown = true
		}
		fmt.Fprintf(&b, "  %-8s %d calls, %d evaluated, accuracy %.1f%%\n",
			d, ds.Total, ds.Evaluated, ds.Accuracy*100)
	}

	return b.String()
}

// FormatPredictionOrg renders a PredictionRecord as an Org-mode block
// suitable for pasting into a trading journal. Structured facts live in
// a PROPERTIES drawer for easy search; the Thesis lists the signals the
// call was built from, and Review is left to fill in by hand.
func FormatPredictionOrg(rec journal.PredictionRecord) string {
	heading := fmt.Sprintf("** Prediction: %s (%s)", rec.ID, rec.Direction)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", rec.ID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", rec.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", rec.Direction))
	b.WriteString(fmt.Sprintf(":CONFIDENCE: %.1f\n", rec.Confidence))
	b.WriteString(fmt.Sprintf(":STRENGTH: %+.4f\n", rec.Strength))
	b.WriteString(fmt.Sprintf(":REF_PRICE: %.2f\n", rec.RefPrice))
	b.WriteString(fmt.Sprintf(":CREATED: %s\n", rec.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":DUE: %s\n", rec.DueAt().UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", rec.Status))
	if rec.Status == journal.Evaluated {
		b.WriteString(fmt.Sprintf(":EVALUATED_AT: %s\n", rec.EvaluatedAt.UTC().Format(time.RFC3339)))
		b.WriteString(fmt.Sprintf(":REALIZED_PRICE: %.2f\n", rec.RealizedPrice))
		b.WriteString(fmt.Sprintf(":REALIZED_CHANGE: %+.2f%%\n", rec.RealizedChangePct))
		b.WriteString(fmt.Sprintf(":OUTCOME: %s\n", rec.Outcome))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")

	b.WriteString("*** Thesis\n")
	for _, cat := range rec.Categories {
		for _, sig := range cat.Signals {
			b.WriteString(fmt.Sprintf("- %s: %s\n", sig.Indicator, sig.Rationale))
		}
	}
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatPredictionsOrg renders multiple records separated by blank lines.
func FormatPredictionsOrg(recs []journal.PredictionRecord) string {
	var b strings.Builder
	for i, rec := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatPredictionOrg(rec))
	}
	return b.String()
}
