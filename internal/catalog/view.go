package catalog

import (
	"strings"

	"github.com/verte-zerg/vocabdrill/internal/model"
)

// Marker reports the ledger status of a word.
type Marker interface {
	IsMastered(word string) bool
	IsIgnored(word string) bool
}

// Row is a catalog entry annotated with its mastery status.
type Row struct {
	model.WordEntry
	Mastered bool
	Ignored  bool
}

// View keeps entries starting with letter (0 means any) whose lowercased
// word has the trimmed, lowercased search as a prefix.
func View(entries []model.WordEntry, letter rune, search string) []model.WordEntry {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]model.WordEntry, 0, len(entries))
	for _, e := range entries {
		if letter != 0 && !model.StartsWithLetter(e.Word, letter) {
			continue
		}
		if search != "" && !strings.HasPrefix(strings.ToLower(e.Word), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Annotate attaches mastered/ignored marks to entries.
func Annotate(entries []model.WordEntry, m Marker) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			WordEntry: e,
			Mastered:  m.IsMastered(e.Word),
			Ignored:   m.IsIgnored(e.Word),
		}
	}
	return rows
}

// ExportName builds the default export file name for a view.
func ExportName(letter rune, search, ext string) string {
	name := "vocabulary"
	if s := strings.ToLower(strings.TrimSpace(search)); s != "" {
		name += "_" + s
	}
	if letter != 0 {
		name += "_" + string(letter)
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
