package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/vocabdrill/internal/catalog"
)

// RenderWords prints catalog rows with their mastery marks.
func RenderWords(w io.Writer, rows []catalog.Row, width int) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No words found.")
		return err
	}
	tableRows := make([][]string, 0, len(rows))
	var mastered, ignored int
	for _, r := range rows {
		status := ""
		switch {
		case r.Mastered:
			status = "mastered"
			mastered++
		case r.Ignored:
			status = "ignored"
			ignored++
		}
		tableRows = append(tableRows, []string{r.Word, r.Meaning, status})
	}
	for _, line := range formatTable([]string{"Word", "Meaning", "Status"}, tableRows, nil) {
		if _, err := fmt.Fprintln(w, truncate(line, width)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d words, %d mastered, %d ignored\n", len(rows), mastered, ignored)
	return err
}
