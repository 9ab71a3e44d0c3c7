package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/vocabdrill/internal/round"
)

type keyMap struct {
	Submit   key.Binding
	Continue key.Binding
	Ignore   key.Binding
	Skip     key.Binding
	Abandon  key.Binding
	Quit     key.Binding

	Drill    key.Binding
	NewRound key.Binding
	Export   key.Binding
	Close    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Continue: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Ignore:   key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "ignore")),
		Skip:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "skip")),
		Abandon:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "abandon")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Drill:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drill wrong")),
		NewRound: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new round")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export wrong")),
		Close:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// bindings lists the keys that act in the current phase.
func (m *Model) bindings() []key.Binding {
	if m.pausing {
		return []key.Binding{m.keys.Quit}
	}
	switch m.engine.Phase() {
	case round.InProgress:
		return []key.Binding{m.keys.Submit, m.keys.Skip, m.keys.Abandon, m.keys.Quit}
	case round.AwaitingIgnoreDecision:
		return []key.Binding{m.keys.Continue, m.keys.Ignore, m.keys.Skip, m.keys.Abandon}
	default:
		drill := m.keys.Drill
		drill.SetEnabled(len(m.engine.Wrong()) > 0)
		return []key.Binding{drill, m.keys.NewRound, m.keys.Export, m.keys.Close}
	}
}
