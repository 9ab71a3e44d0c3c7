// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/vocabdrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Percent returns part/whole as a rounded percentage, or 0 for an empty whole.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// Accuracy returns the lifetime share of correct answers.
func Accuracy(c model.Cumulative) int {
	return Percent(c.Correct, c.Seen)
}

// MasteryPercent returns the share of the catalog already mastered.
func MasteryPercent(c model.Cumulative) int {
	return Percent(c.Mastered, c.CatalogSize)
}

// RoundAccuracy returns the share of a round answered correctly.
func RoundAccuracy(r model.RoundRecord) float64 {
	if r.Size <= 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Size) * 100
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderCumulative prints the lifetime block.
func RenderCumulative(w io.Writer, c model.Cumulative) error {
	lines := []string{
		"Progress",
		fmt.Sprintf("Seen: %d", c.Seen),
		fmt.Sprintf("Correct: %d", c.Correct),
		fmt.Sprintf("Accuracy: %d%%", Accuracy(c)),
		fmt.Sprintf("Mastered: %d / %d (%d%%)", c.Mastered, c.CatalogSize, MasteryPercent(c)),
		fmt.Sprintf("Ignored: %d", c.Ignored),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints one row per completed round, oldest first.
func RenderHistory(w io.Writer, rounds []model.RoundRecord, width int) error {
	if len(rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Rounds"); err != nil {
		return err
	}
	headers := []string{"Ended", "Mode", "Filter", "Size", "Correct", "Wrong", "Accuracy", "Duration"}
	rows := make([][]string, 0, len(rounds))
	for _, r := range rounds {
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Mode,
			r.Filter,
			fmt.Sprintf("%d", r.Size),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Wrong),
			fmt.Sprintf("%.1f%%", RoundAccuracy(r)),
			formatDuration(r.DurationMs),
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, truncate(line, width)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurve prints a moving-average accuracy sparkline fitted to width.
func RenderCurve(w io.Writer, rounds []model.RoundRecord, window, width int) error {
	if len(rounds) < 2 {
		return nil
	}
	accs := make([]float64, len(rounds))
	for i, r := range rounds {
		accs[i] = RoundAccuracy(r)
	}
	accs = MovingAverage(accs, window)
	label := fmt.Sprintf("Accuracy (avg %d) ", max(window, 1))
	if room := width - displayWidth(label) - 2; width > 0 && room > 0 && len(accs) > room {
		accs = accs[len(accs)-room:]
	}
	_, err := fmt.Fprintf(w, "%s[%s] %.1f%%\n", label, Sparkline(accs), accs[len(accs)-1])
	return err
}

func formatDuration(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	secs := (ms + 500) / 1000
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}
