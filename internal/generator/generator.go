// Package generator builds randomized question orders and answer hints.
package generator

import (
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/vocabdrill/internal/model"
)

const hintGap = 5

// Generator produces uniformly shuffled rounds.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed, for reproducible orders.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a uniformly permuted copy of entries. The input is not modified.
func (g *Generator) Shuffle(entries []model.WordEntry) []model.WordEntry {
	out := make([]model.WordEntry, len(entries))
	copy(out, entries)
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Hint masks a word, keeping its first and last letter.
// Words longer than three letters always show five underscores so the
// hint does not give away the length.
func Hint(word string) string {
	runes := []rune(strings.TrimSpace(word))
	switch len(runes) {
	case 0:
		return ""
	case 1:
		return string(runes)
	case 2:
		return string(runes[0]) + "_"
	case 3:
		return string(runes[0]) + "_" + string(runes[2])
	}
	return string(runes[0]) + strings.Repeat("_", hintGap) + string(runes[len(runes)-1])
}
