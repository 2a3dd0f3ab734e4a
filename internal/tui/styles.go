package tui

import (
	"github.com/charmbracelet/lipgloss"

	"svw.info/lattice/internal/domain"
)

var (
	Accent = lipgloss.Color("#FF5A00")
	Muted  = lipgloss.Color("8")
	Bright = lipgloss.Color("15")
	Fill   = lipgloss.Color("7")
	Ink    = lipgloss.Color("0")
)

// indicatorColors maps palette entries to terminal colors. ANSI indices
// keep the palette readable on 256-color SSH clients.
var indicatorColors = [domain.Colors]lipgloss.Color{
	domain.Off:    "8",
	domain.Green:  "2",
	domain.Blue:   "4",
	domain.Red:    "1",
	domain.Purple: "5",
	domain.White:  "15",
}

func colorOf(c domain.Color) lipgloss.Color {
	if !c.Valid() {
		return Muted
	}
	return indicatorColors[c]
}

// styles are bound to one renderer so every SSH client gets output for its
// own terminal rather than the server's.
type styles struct {
	r *lipgloss.Renderer

	Title   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Bright  lipgloss.Style
	Frame   lipgloss.Style
	Rule    lipgloss.Style
	Segment lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return styles{
		r:       r,
		Title:   r.NewStyle().Foreground(Bright).Bold(true),
		Muted:   r.NewStyle().Foreground(Muted),
		Accent:  r.NewStyle().Foreground(Accent),
		Bright:  r.NewStyle().Foreground(Bright),
		Frame:   r.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(Muted),
		Rule:    r.NewStyle().Foreground(Muted),
		Segment: r.NewStyle().Align(lipgloss.Center),
	}
}

// button draws a boxed, centered label. The selected button is inverted;
// a marked one gets an accent border.
func (s styles) button(label string, width int, selected, marked bool, fg lipgloss.Color) string {
	if width < 4 {
		return ""
	}
	st := s.r.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Muted).
		Foreground(fg).
		Width(width - 2).
		Align(lipgloss.Center)
	if marked {
		st = st.BorderForeground(Accent)
	}
	if selected {
		st = st.BorderForeground(Bright).Foreground(Ink).Background(Fill)
	}
	return st.Render(truncate(label, width-2))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
