// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/vocabdrill/internal/catalog"
	"github.com/verte-zerg/vocabdrill/internal/generator"
	"github.com/verte-zerg/vocabdrill/internal/model"
	"github.com/verte-zerg/vocabdrill/internal/round"
	"github.com/verte-zerg/vocabdrill/internal/stats"
)

const (
	correctPause = 900 * time.Millisecond
	ignorePause  = 1500 * time.Millisecond

	wrongExportName = "wrong_words.csv"
	summaryListMax  = 10
)

// revealMsg ends a pause. Stale ticks carry an older seq and are dropped.
type revealMsg struct {
	seq int
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	engine     *round.Engine
	catalog    []model.WordEntry
	config     model.Config
	log        *slog.Logger
	exportPath string

	input textinput.Model
	keys  keyMap
	help  help.Model

	width  int
	height int

	shown    model.WordEntry
	pausing  bool
	seq      int
	feedback string
	notice   string
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a drill TUI model. A saved round is resumed; otherwise
// a new round is drawn from the catalog.
func NewModel(engine *round.Engine, words []model.WordEntry, cfg model.Config, log *slog.Logger) (*Model, error) {
	if log == nil {
		log = slog.Default()
	}
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "type the word and press enter"
	input.CharLimit = 64
	input.Width = 40
	input.Focus()

	m := &Model{
		engine:     engine,
		catalog:    words,
		config:     cfg,
		log:        log,
		exportPath: wrongExportName,
		input:      input,
		keys:       newKeyMap(),
		help:       help.New(),
	}
	switch engine.Phase() {
	case round.InProgress, round.AwaitingIgnoreDecision:
		p := engine.Progress()
		m.notice = fmt.Sprintf("Resumed round at question %d of %d.", p.Position+1, p.Total)
		m.showCurrent()
		if pending, ok := engine.Pending(); ok {
			m.feedback = wrongFeedback(pending)
		}
	default:
		if err := m.startRound(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case revealMsg:
		if msg.seq == m.seq && m.pausing {
			m.pausing = false
			m.feedback = ""
			m.showCurrent()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Abandon):
		if phase := m.engine.Phase(); phase == round.InProgress || phase == round.AwaitingIgnoreDecision {
			if err := m.engine.Abandon(context.Background()); err != nil {
				m.fail("abandon round", err)
				return m, nil
			}
		}
		return m, tea.Quit
	}
	if m.pausing {
		return m, nil
	}

	switch m.engine.Phase() {
	case round.InProgress:
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m, m.submit()
		case key.Matches(msg, m.keys.Skip):
			m.skip()
			return m, nil
		case key.Matches(msg, m.keys.Ignore):
			return m, m.ignore()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case round.AwaitingIgnoreDecision:
		switch {
		case key.Matches(msg, m.keys.Continue):
			m.next()
		case key.Matches(msg, m.keys.Ignore):
			return m, m.ignore()
		case key.Matches(msg, m.keys.Skip):
			m.skip()
		}
		return m, nil
	default:
		return m.handleSummaryKey(msg)
	}
}

func (m *Model) handleSummaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Drill):
		if _, err := m.engine.StartDrill(context.Background()); err != nil {
			m.fail("start drill", err)
			return m, nil
		}
		m.notice = fmt.Sprintf("Drilling %d wrong words.", m.engine.Progress().Total)
		m.showCurrent()
	case key.Matches(msg, m.keys.NewRound):
		if err := m.startRound(); err != nil {
			m.fail("start round", err)
		}
	case key.Matches(msg, m.keys.Export):
		m.exportWrong()
	case key.Matches(msg, m.keys.Close):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) startRound() error {
	pool := m.engine.Pool(m.catalog, m.config.Filter)
	res, err := m.engine.Start(context.Background(), pool, m.config.Words, m.config.Filter)
	if err != nil {
		return err
	}
	m.notice = ""
	if res.Truncated {
		m.notice = fmt.Sprintf("Only %d eligible words; the round has %d questions instead of %d.", res.Size, res.Size, res.Requested)
	}
	m.feedback = ""
	m.showCurrent()
	return nil
}

func (m *Model) submit() tea.Cmd {
	res, err := m.engine.Submit(context.Background(), m.input.Value())
	if err != nil {
		m.fail("submit", err)
		return nil
	}
	m.notice = ""
	if !res.Correct {
		m.feedback = wrongFeedback(res.Entry)
		return nil
	}
	m.feedback = correctStyle.Render("Correct!")
	return m.pause(correctPause)
}

func (m *Model) next() {
	if _, err := m.engine.Continue(context.Background()); err != nil {
		m.fail("continue", err)
		return
	}
	m.feedback = ""
	m.notice = ""
	m.showCurrent()
}

func (m *Model) ignore() tea.Cmd {
	res, err := m.engine.Ignore(context.Background())
	if err != nil {
		m.fail("ignore", err)
		return nil
	}
	m.notice = ""
	m.feedback = correctStyle.Render(fmt.Sprintf("Accepted. %q will not be asked again.", res.Entry.Word))
	return m.pause(ignorePause)
}

func (m *Model) skip() {
	res, err := m.engine.Skip(context.Background())
	if err != nil {
		m.fail("skip", err)
		return
	}
	m.notice = fmt.Sprintf("Skipped %q (%s).", res.Entry.Word, res.Entry.Meaning)
	m.feedback = ""
	m.showCurrent()
}

// pause keeps the answered question on screen for d before the next one.
func (m *Model) pause(d time.Duration) tea.Cmd {
	m.pausing = true
	m.seq++
	seq := m.seq
	return tea.Tick(d, func(time.Time) tea.Msg {
		return revealMsg{seq: seq}
	})
}

func (m *Model) showCurrent() {
	m.input.Reset()
	if q, ok := m.engine.Current(); ok {
		m.shown = q
	}
}

func (m *Model) exportWrong() {
	wrong := m.engine.Wrong()
	if err := catalog.ExportFile(m.exportPath, wrong); err != nil {
		m.fail("export wrong words", err)
		return
	}
	m.notice = fmt.Sprintf("Exported %d words to %s.", len(wrong), m.exportPath)
}

// fail turns engine errors into guidance. Unexpected errors are logged too.
func (m *Model) fail(action string, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, round.ErrNoIgnorePending):
		m.notice = "Nothing to ignore: ctrl+g accepts a wrong answer right after it is marked."
	case errors.Is(err, round.ErrAwaitingDecision):
		m.notice = "Press enter to continue, ctrl+g to accept your answer or ctrl+n to skip."
	case errors.Is(err, round.ErrNoWrongWords):
		m.notice = "No wrong words to drill."
	case errors.Is(err, round.ErrEmptyPool):
		m.notice = "No eligible words left for this filter. Try another filter or reset progress."
	case errors.Is(err, catalog.ErrNothingToExport):
		m.notice = "No wrong words to export."
	default:
		m.log.Error("intent failed", "action", action, "error", err)
		m.notice = fmt.Sprintf("Failed to %s: %v", action, err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.engine.Phase() {
	case round.InProgress, round.AwaitingIgnoreDecision:
		content = m.renderQuestion()
	default:
		if m.pausing {
			content = m.renderQuestion()
		} else {
			content = m.renderSummary()
		}
	}
	if m.notice != "" {
		content += "\n\n" + noticeStyle.Render(m.notice)
	}
	footer := m.renderFooter()
	helpLine := m.help.ShortHelpView(m.bindings())
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer + "\n" + helpLine
	}
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpRow := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
	return body + "\n" + footerLine + "\n" + helpRow
}

func (m *Model) renderQuestion() string {
	lines := []string{
		currentWordStyle.Render(m.shown.Meaning),
		pendingStyle.Render(generator.Hint(m.shown.Word)),
		"",
		m.input.View(),
	}
	if m.feedback != "" {
		lines = append(lines, "", m.feedback)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSummary() string {
	summary, ok := m.engine.Summary()
	if !ok {
		return "No active round. Press n to start one."
	}
	var lines []string
	if summary.Drill {
		lines = append(lines,
			currentWordStyle.Render("Drill complete"),
			fmt.Sprintf("Still wrong: %d", summary.RemainingWrongCount),
		)
	} else {
		c := model.Cumulative{Seen: summary.CumulativeSeen, Correct: summary.CumulativeCorrect}
		lines = append(lines,
			currentWordStyle.Render("Round complete"),
			fmt.Sprintf("Wrong answers: %d", summary.WrongCount),
			fmt.Sprintf("Lifetime: %d seen, %d correct (%d%%)", c.Seen, c.Correct, stats.Accuracy(c)),
		)
	}
	if len(summary.WrongEntries) > 0 {
		lines = append(lines, "")
		for i, e := range summary.WrongEntries {
			if i == summaryListMax {
				lines = append(lines, pendingStyle.Render(fmt.Sprintf("… and %d more", len(summary.WrongEntries)-i)))
				break
			}
			lines = append(lines, incorrectStyle.Render(e.Word)+pendingStyle.Render("  "+e.Meaning))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	c := m.engine.Cumulative(len(m.catalog))
	segments := make([]string, 0, 4)
	if phase := m.engine.Phase(); phase == round.InProgress || phase == round.AwaitingIgnoreDecision || m.pausing {
		p := m.engine.Progress()
		label := "Round"
		if m.engine.Drill() {
			label = "Drill"
		}
		segments = append(segments, fmt.Sprintf("%s %d/%d (%d%%)", label, p.Position, p.Total, p.Percent))
	}
	segments = append(segments,
		fmt.Sprintf("Accuracy %d%%", stats.Accuracy(c)),
		fmt.Sprintf("Mastered %d/%d (%d%%)", c.Mastered, c.CatalogSize, stats.MasteryPercent(c)),
	)
	if c.Ignored > 0 {
		segments = append(segments, fmt.Sprintf("Ignored %d", c.Ignored))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func wrongFeedback(e model.WordEntry) string {
	return incorrectStyle.Render(fmt.Sprintf("Wrong. The answer is %q.", e.Word))
}
