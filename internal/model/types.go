// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Config defines practice settings.
type Config struct {
	WordsFile string
	Words     int
	Filter    Filter
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// WordEntry is one word/meaning pair from the catalog. Word is the identity key.
type WordEntry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// FilterKind selects how a pool is narrowed before a round is drawn.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterRandom
	FilterLetter
)

// Filter narrows the eligible pool.
type Filter struct {
	Kind   FilterKind
	Letter rune
}

// ParseFilter accepts "all", "random" or a single letter A-Z (any case).
func ParseFilter(s string) (Filter, error) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "", "all":
		return Filter{Kind: FilterAll}, nil
	case "random":
		return Filter{Kind: FilterRandom}, nil
	}
	runes := []rune(strings.ToUpper(v))
	if len(runes) != 1 || runes[0] < 'A' || runes[0] > 'Z' {
		return Filter{}, fmt.Errorf("invalid filter %q (want all, random or a letter A-Z)", s)
	}
	return Filter{Kind: FilterLetter, Letter: runes[0]}, nil
}

// String renders the filter in the form ParseFilter accepts.
func (f Filter) String() string {
	switch f.Kind {
	case FilterRandom:
		return "random"
	case FilterLetter:
		return string(f.Letter)
	default:
		return "all"
	}
}

// Match reports whether the entry passes the filter.
func (f Filter) Match(e WordEntry) bool {
	if f.Kind != FilterLetter {
		return true
	}
	return StartsWithLetter(e.Word, f.Letter)
}

// StartsWithLetter compares the uppercased first character of word with letter.
func StartsWithLetter(word string, letter rune) bool {
	for _, r := range word {
		return unicode.ToUpper(r) == letter
	}
	return false
}

// Progress holds lifetime counters. TotalCorrect never exceeds TotalSeen.
type Progress struct {
	TotalSeen    int `json:"total_seen"`
	TotalCorrect int `json:"total_correct"`
}

// RoundState is the persisted snapshot of an in-flight round.
type RoundState struct {
	ID        string      `json:"id"`
	Filter    string      `json:"filter"`
	StartedAt time.Time   `json:"started_at"`
	Words     []WordEntry `json:"words"`
	Position  int         `json:"position"`
	Wrong     []WordEntry `json:"wrong"`
	Correct   int         `json:"correct"`
	Drill     bool        `json:"drill"`
	Awaiting  bool        `json:"awaiting_ignore_decision"`
	Pending   *WordEntry  `json:"pending_wrong,omitempty"`
}

// Summary is produced when a round completes.
type Summary struct {
	Drill             bool
	WrongCount        int
	WrongEntries      []WordEntry
	CumulativeSeen    int
	CumulativeCorrect int
	// RemainingWrongCount is only meaningful for drill rounds.
	RemainingWrongCount int
}

// Cumulative is the lifetime view shown next to a round.
type Cumulative struct {
	Seen        int
	Correct     int
	Mastered    int
	Ignored     int
	CatalogSize int
}

// RoundRecord is one completed round in the history table.
type RoundRecord struct {
	ID         string
	Mode       string
	Filter     string
	Size       int
	Correct    int
	Wrong      int
	StartedAt  time.Time
	EndedAt    time.Time
	DurationMs int64
}

// Round modes recorded in history.
const (
	ModeNormal = "normal"
	ModeDrill  = "drill"
)
