package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/vocabdrill/internal/model"
	"github.com/verte-zerg/vocabdrill/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "vocabdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		mode := model.ModeNormal
		if i == 1 {
			mode = model.ModeDrill
		}
		rec := model.RoundRecord{
			ID:         string(rune('a' + i)),
			Mode:       mode,
			Filter:     "all",
			Size:       10,
			Correct:    5 + i,
			Wrong:      5 - i,
			StartedAt:  start,
			EndedAt:    end,
			DurationMs: end.Sub(start).Milliseconds(),
		}
		if err := st.InsertRound(ctx, rec); err != nil {
			t.Fatalf("insert round: %v", err)
		}
	}

	cumulative := model.Cumulative{Seen: 20, Correct: 13, Mastered: 13, CatalogSize: 50}
	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 2}, cumulative)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(report.Rounds))
	}
	if report.Rounds[0].ID != "b" || report.Rounds[1].ID != "c" {
		t.Fatalf("unexpected round ids: %+v", report.Rounds)
	}

	normal, err := BuildReport(ctx, st, model.StatsConfig{Mode: model.ModeNormal}, cumulative)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(normal.Rounds) != 2 || normal.Rounds[1].ID != "c" {
		t.Fatalf("unexpected normal rounds: %+v", normal.Rounds)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Accuracy: 65%", "Mastered: 13 / 50 (26%)", "drill", "70.0%", "30s", "Accuracy (avg 2)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
