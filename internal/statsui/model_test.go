package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/vocabdrill/internal/model"
)

type fakeRounds struct {
	rounds []model.RoundRecord
	err    error
	last   model.StatsConfig
}

func (f *fakeRounds) ListRounds(_ context.Context, cfg model.StatsConfig) ([]model.RoundRecord, error) {
	f.last = cfg
	if f.err != nil {
		return nil, f.err
	}
	var out []model.RoundRecord
	for _, r := range f.rounds {
		if cfg.Mode != "" && r.Mode != cfg.Mode {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeMarks map[string]string

func (f fakeMarks) IsMastered(word string) bool { return f[word] == "mastered" }
func (f fakeMarks) IsIgnored(word string) bool  { return f[word] == "ignored" }

func sampleRounds() []model.RoundRecord {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []model.RoundRecord{
		{ID: "a", Mode: model.ModeNormal, Filter: "all", Size: 4, Correct: 2, Wrong: 2, StartedAt: start, DurationMs: 61000},
		{ID: "b", Mode: model.ModeDrill, Filter: "all", Size: 2, Correct: 2, StartedAt: start.Add(time.Hour), DurationMs: 5000},
		{ID: "c", Mode: model.ModeNormal, Filter: "C", Size: 4, Correct: 4, StartedAt: start.Add(2 * time.Hour), DurationMs: 30000},
	}
}

func newTestModel(t *testing.T, st *fakeRounds) *Model {
	t.Helper()
	entries := []model.WordEntry{
		{Word: "cat", Meaning: "貓"},
		{Word: "cow", Meaning: "牛"},
		{Word: "dog", Meaning: "狗"},
	}
	marks := fakeMarks{"cat": "mastered", "dog": "ignored"}
	cumulative := model.Cumulative{Seen: 10, Correct: 8, Mastered: 1, Ignored: 1, CatalogSize: 3}
	m := NewModel(st, model.StatsConfig{CurveWindow: 3}, cumulative, entries, marks)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsCards(t *testing.T) {
	m := newTestModel(t, &fakeRounds{rounds: sampleRounds()})
	view := m.View()
	for _, want := range []string{"Overview", "Rounds", "Lifetime Acc", "80%", "1/3", "Accuracy (avg 3)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestRoundsTabListsNewestFirst(t *testing.T) {
	m := newTestModel(t, &fakeRounds{rounds: sampleRounds()})
	rows := m.roundTable.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][2] != "C" || rows[0][6] != "100.0%" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[2][7] != "1m1s" {
		t.Fatalf("unexpected duration %q", rows[2][7])
	}
	m.Update(key("l"))
	if m.activeTab != tabRounds || !m.roundTable.Focused() {
		t.Fatalf("expected focused rounds tab")
	}
}

func TestTabNavigationWraps(t *testing.T) {
	m := newTestModel(t, &fakeRounds{})
	m.Update(key("h"))
	if m.activeTab != tabWords {
		t.Fatalf("expected wrap to words tab, got %d", m.activeTab)
	}
	m.Update(key("l"))
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to overview, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "No rounds found.") {
		t.Fatalf("expected empty history message")
	}
}

func TestWordSearch(t *testing.T) {
	m := newTestModel(t, &fakeRounds{})
	rows := m.wordTable.Rows()
	if len(rows) != 3 || rows[0][2] != "mastered" || rows[2][2] != "ignored" || rows[1][2] != "" {
		t.Fatalf("unexpected word rows %v", rows)
	}

	m.moveTab(2)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.searchMode {
		t.Fatalf("expected search modal")
	}
	m.Update(key("co"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rows = m.wordTable.Rows()
	if len(rows) != 1 || rows[0][0] != "cow" {
		t.Fatalf("expected cow only, got %v", rows)
	}
	if !strings.Contains(m.renderFilterSummary(), "search=co") {
		t.Fatalf("expected search in summary")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(key("zz"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.search != "co" || len(m.wordTable.Rows()) != 1 {
		t.Fatalf("esc must keep the previous search")
	}
}

func TestApplyFilter(t *testing.T) {
	st := &fakeRounds{rounds: sampleRounds()}
	m := newTestModel(t, st)
	m.Update(key("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("drill")
	m.filterInputs[2].SetValue("5")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter to apply, got error %q", m.filterError)
	}
	if st.last.Mode != model.ModeDrill || st.last.Last != 5 || st.last.CurveWindow != 3 {
		t.Fatalf("unexpected config %+v", st.last)
	}
	if len(m.roundTable.Rows()) != 1 {
		t.Fatalf("expected one drill round, got %d", len(m.roundTable.Rows()))
	}
}

func TestApplyFilterRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		index int
		value string
		want  string
	}{
		{name: "mode", index: 0, value: "fast", want: "invalid mode"},
		{name: "since", index: 1, value: "03/01/2026", want: "invalid since"},
		{name: "last", index: 2, value: "-1", want: "invalid last"},
		{name: "window", index: 3, value: "0", want: "invalid curve window"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t, &fakeRounds{})
			m.Update(key("/"))
			m.filterInputs[tc.index].SetValue(tc.value)
			m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if !m.filterMode || !strings.Contains(m.filterError, tc.want) {
				t.Fatalf("expected %q error, got %q", tc.want, m.filterError)
			}
		})
	}
}

func TestCurveWindowKeys(t *testing.T) {
	m := newTestModel(t, &fakeRounds{rounds: sampleRounds()})
	m.Update(key("="))
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
	m.Update(key("="))
	m.Update(key("-"))
	m.Update(key("-"))
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.CurveWindow)
	}
}

func TestLoadErrorShownInFooter(t *testing.T) {
	m := newTestModel(t, &fakeRounds{err: errors.New("db locked")})
	if !strings.Contains(m.View(), "db locked") {
		t.Fatalf("expected error in view")
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, &fakeRounds{})
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Fatalf("expected quit on q")
	}
	m.Update(key("/"))
	m.Update(key("q"))
	if m.filterInputs[0].Value() != "q" {
		t.Fatalf("q must type into the filter form, got %q", m.filterInputs[0].Value())
	}
}
