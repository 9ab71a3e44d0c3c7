// Package ledger tracks mastered and ignored words and the lifetime
// progress counters.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/vocabdrill/internal/model"
	"github.com/verte-zerg/vocabdrill/internal/store"
)

// Store keys.
const (
	KeyMastered = "mastered_words"
	KeyIgnored  = "ignored_words"
	KeyProgress = "progress"
)

type reader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Ledger holds the mastered and ignored word sets. Both keep insertion order.
type Ledger struct {
	mastered wordSet
	ignored  wordSet
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{mastered: newWordSet(nil), ignored: newWordSet(nil)}
}

// Load reads both sets. Unparseable values are logged and treated as empty.
func Load(ctx context.Context, r reader, log *slog.Logger) (*Ledger, error) {
	mastered, err := loadWords(ctx, r, KeyMastered, log)
	if err != nil {
		return nil, err
	}
	ignored, err := loadWords(ctx, r, KeyIgnored, log)
	if err != nil {
		return nil, err
	}
	return &Ledger{mastered: newWordSet(mastered), ignored: newWordSet(ignored)}, nil
}

func loadWords(ctx context.Context, r reader, key string, log *slog.Logger) ([]string, error) {
	raw, ok, err := r.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	var words []string
	if err := json.Unmarshal([]byte(raw), &words); err != nil {
		if log != nil {
			log.Warn("discarding malformed word set", "key", key, "error", err)
		}
		return nil, nil
	}
	return words, nil
}

// IsMastered reports whether word was answered correctly before.
func (l *Ledger) IsMastered(word string) bool {
	return l.mastered.has(word)
}

// IsIgnored reports whether word was ignored.
func (l *Ledger) IsIgnored(word string) bool {
	return l.ignored.has(word)
}

// MarkMastered adds word to the mastered set. It reports whether the set changed.
func (l *Ledger) MarkMastered(word string) bool {
	return l.mastered.add(word)
}

// MarkIgnored adds word to the ignored set. It reports whether the set changed.
func (l *Ledger) MarkIgnored(word string) bool {
	return l.ignored.add(word)
}

// Counts returns the sizes of the mastered and ignored sets.
func (l *Ledger) Counts() (mastered, ignored int) {
	return len(l.mastered.order), len(l.ignored.order)
}

// EligiblePool keeps catalog entries that are neither mastered nor ignored.
func (l *Ledger) EligiblePool(catalog []model.WordEntry) []model.WordEntry {
	pool := make([]model.WordEntry, 0, len(catalog))
	for _, e := range catalog {
		if l.IsMastered(e.Word) || l.IsIgnored(e.Word) {
			continue
		}
		pool = append(pool, e)
	}
	return pool
}

// Reset clears both sets.
func (l *Ledger) Reset() {
	l.mastered = newWordSet(nil)
	l.ignored = newWordSet(nil)
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{mastered: newWordSet(l.mastered.order), ignored: newWordSet(l.ignored.order)}
}

// Stage queues writes of both sets.
func (l *Ledger) Stage(b *store.Batch) error {
	for _, s := range []struct {
		key string
		set wordSet
	}{{KeyMastered, l.mastered}, {KeyIgnored, l.ignored}} {
		data, err := json.Marshal(s.set.list())
		if err != nil {
			return fmt.Errorf("encode %s: %w", s.key, err)
		}
		b.Set(s.key, string(data))
	}
	return nil
}

type wordSet struct {
	order []string
	index map[string]struct{}
}

func newWordSet(words []string) wordSet {
	s := wordSet{index: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.add(w)
	}
	return s
}

func (s *wordSet) add(word string) bool {
	if _, ok := s.index[word]; ok {
		return false
	}
	s.index[word] = struct{}{}
	s.order = append(s.order, word)
	return true
}

func (s wordSet) has(word string) bool {
	_, ok := s.index[word]
	return ok
}

func (s wordSet) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
