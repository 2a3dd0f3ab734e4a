package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/session"
)

type keyMap struct {
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	Activate   key.Binding
	Tab        key.Binding
	Backspace  key.Binding
	Quit       key.Binding
	Interrupt  key.Binding
	ForceSolve key.Binding
}

func defaultKeyMap(debug bool) keyMap {
	km := keyMap{
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "move")),
		Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "move")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "switch row")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "switch row")),
		Activate:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "activate")),
		Tab:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "input/buttons")),
		Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete")),
		Quit:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit")),
		// ctrl+c drops the connection in every phase, including the ones
		// where esc does nothing.
		Interrupt:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "disconnect")),
		ForceSolve: key.NewBinding(key.WithKeys("f12"), key.WithHelp("f12", "instant solve")),
	}
	km.ForceSolve.SetEnabled(debug)
	return km
}

// bindings implements help.KeyMap over a fixed list.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

// helpFor lists the keys that do something in the snapshot's phase.
func (k keyMap) helpFor(s session.Snapshot) bindings {
	switch s.Phase {
	case domain.PhasePuzzle:
		return bindings{k.Left, k.Up, k.Activate, k.Quit, k.ForceSolve}
	case domain.PhaseEmail:
		if s.EmailFocus == session.EmailInput {
			return bindings{k.Tab, k.Backspace, k.Activate, k.Interrupt}
		}
		return bindings{k.Tab, k.Left, k.Activate, k.Interrupt}
	case domain.PhaseSubmitted:
		return bindings{k.Activate, k.Quit}
	default:
		return bindings{k.Quit}
	}
}

// translate turns a key press into controller inputs. While the email field
// has focus every printable rune is text, so letters never trigger bindings.
func (k keyMap) translate(msg tea.KeyMsg, s session.Snapshot) []session.Input {
	if s.Phase == domain.PhaseEmail && s.EmailFocus == session.EmailInput {
		switch msg.Type {
		case tea.KeySpace:
			return []session.Input{session.TextInput(' ')}
		case tea.KeyRunes:
			return runes(msg.Runes)
		}
	}

	switch {
	case key.Matches(msg, k.Left):
		return []session.Input{session.MoveFocus(session.Left)}
	case key.Matches(msg, k.Right):
		return []session.Input{session.MoveFocus(session.Right)}
	case key.Matches(msg, k.Up):
		return []session.Input{session.MoveFocus(session.Up)}
	case key.Matches(msg, k.Down):
		return []session.Input{session.MoveFocus(session.Down)}
	case key.Matches(msg, k.Activate):
		return []session.Input{session.Activate()}
	case key.Matches(msg, k.Tab):
		return []session.Input{session.TabFocus()}
	case key.Matches(msg, k.Backspace):
		return []session.Input{session.Backspace()}
	case key.Matches(msg, k.Quit):
		return []session.Input{session.Quit()}
	case key.Matches(msg, k.ForceSolve):
		return []session.Input{session.ForceSolve()}
	}
	return nil
}

func runes(rs []rune) []session.Input {
	in := make([]session.Input, 0, len(rs))
	for _, r := range rs {
		in = append(in, session.TextInput(r))
	}
	return in
}
