package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/vocabdrill/internal/model"
	"github.com/verte-zerg/vocabdrill/internal/store"
)

// Counter holds lifetime seen/correct totals.
type Counter struct {
	p model.Progress
}

// LoadCounter reads the persisted totals. Unparseable or inconsistent
// values are logged and treated as zero.
func LoadCounter(ctx context.Context, r reader, log *slog.Logger) (Counter, error) {
	raw, ok, err := r.Get(ctx, KeyProgress)
	if err != nil {
		return Counter{}, fmt.Errorf("load %s: %w", KeyProgress, err)
	}
	if !ok {
		return Counter{}, nil
	}
	var p model.Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil || !valid(p) {
		if log != nil {
			log.Warn("discarding malformed progress", "value", raw, "error", err)
		}
		return Counter{}, nil
	}
	return Counter{p: p}, nil
}

func valid(p model.Progress) bool {
	return p.TotalSeen >= 0 && p.TotalCorrect >= 0 && p.TotalCorrect <= p.TotalSeen
}

// RecordSeen counts one more question answered.
func (c *Counter) RecordSeen() {
	c.p.TotalSeen++
}

// RecordCorrect counts one more correct answer against an earlier RecordSeen.
// Correct never exceeds seen.
func (c *Counter) RecordCorrect() {
	if c.p.TotalCorrect >= c.p.TotalSeen {
		return
	}
	c.p.TotalCorrect++
}

// Progress returns the current totals.
func (c Counter) Progress() model.Progress {
	return c.p
}

// Reset zeroes both totals.
func (c *Counter) Reset() {
	c.p = model.Progress{}
}

// Stage queues a write of the totals.
func (c Counter) Stage(b *store.Batch) error {
	data, err := json.Marshal(c.p)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyProgress, err)
	}
	b.Set(KeyProgress, string(data))
	return nil
}
