// Package tui renders a session.Controller with bubbletea. The same Model
// serves the local terminal and every SSH connection; only the renderer and
// the program's input/output differ.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/session"
)

const (
	// MinWidth and MinHeight are the smallest terminal the puzzle screen fits.
	MinWidth  = 78
	MinHeight = 24

	DefaultWidth  = 120
	DefaultHeight = 40

	splashTick = 100 * time.Millisecond
)

type splashTickMsg struct{}

type Options struct {
	// Width and Height seed the layout until the first WindowSizeMsg.
	Width  int
	Height int
	// Renderer is per connection; nil uses the process renderer.
	Renderer *lipgloss.Renderer
	// Splash is the logo art.
	Splash string
	// Context is handed to every controller call.
	Context context.Context
}

type Model struct {
	ctx    context.Context
	ctl    *session.Controller
	keys   keyMap
	help   help.Model
	st     styles
	splash string

	width  int
	height int
	snap   session.Snapshot
}

func New(ctl *session.Controller, opts Options) Model {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	snap := ctl.Snapshot()
	st := newStyles(opts.Renderer)

	h := help.New()
	h.Width = opts.Width
	h.Styles.ShortKey = st.Bright
	h.Styles.ShortDesc = st.Muted
	h.Styles.ShortSeparator = st.Muted
	h.Styles.Ellipsis = st.Muted

	return Model{
		ctx:    opts.Context,
		ctl:    ctl,
		keys:   defaultKeyMap(snap.Debug),
		help:   h,
		st:     st,
		splash: opts.Splash,
		width:  opts.Width,
		height: opts.Height,
		snap:   snap,
	}
}

func tickSplash() tea.Cmd {
	return tea.Tick(splashTick, func(time.Time) tea.Msg { return splashTickMsg{} })
}

func (m Model) Init() tea.Cmd {
	if m.snap.Phase == domain.PhaseSplash {
		return tickSplash()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case splashTickMsg:
		m.snap = m.ctl.Tick(m.ctx)
		if m.snap.Phase == domain.PhaseSplash {
			return m, tickSplash()
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Interrupt) {
			return m, tea.Quit
		}
		for _, in := range m.keys.translate(msg, m.snap) {
			m.snap = m.ctl.HandleInput(m.ctx, in)
		}
		if m.snap.Terminated {
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

// Snapshot is the state the last View rendered.
func (m Model) Snapshot() session.Snapshot { return m.snap }
