package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"svw.info/lattice/internal/automaton"
	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/session"
)

const (
	maxFrameWidth = 108
	buttonGap     = 2
	emailHint     = "type-your-email@example.com"
)

func (m Model) View() string {
	s := m.snap
	if s.Terminated {
		return ""
	}
	if s.Phase == domain.PhaseSplash {
		return m.viewSplash()
	}
	if m.width < MinWidth || m.height < MinHeight {
		return m.viewResize()
	}

	fw := min(m.width-6, maxFrameWidth)
	inner := fw - 2

	header := m.viewHeader()
	footer := m.viewFooter(fw)

	var body string
	switch s.Phase {
	case domain.PhasePuzzle:
		body = m.viewPuzzle(inner)
	case domain.PhaseEmail:
		body = m.viewEmail(inner)
	case domain.PhaseSubmitted:
		body = m.viewSubmitted(inner)
	}
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 3
	body = m.st.Frame.Width(inner).Height(max(bodyHeight, 1)).Render(body)

	page := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return "\n" + m.st.r.PlaceHorizontal(m.width, lipgloss.Center, page)
}

func (m Model) viewSplash() string {
	var lines []string
	for _, line := range strings.Split(m.splash, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "SOLVE THE LATTICE") {
			lines = append(lines, m.st.Bright.Render(line))
		} else {
			lines = append(lines, m.st.Muted.Render(line))
		}
	}
	lines = append(lines, "", m.st.Accent.Bold(true).Render("ACCESS CHALLENGE INITIALIZING"))
	if d := m.snap.SplashRemaining; d > 0 {
		secs := int((d + time.Second - 1) / time.Second)
		lines = append(lines, m.st.Muted.Render(fmt.Sprintf("Starting in %ds", secs)))
	}
	block := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return m.st.r.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
}

func (m Model) viewResize() string {
	block := lipgloss.JoinVertical(lipgloss.Center,
		m.st.Muted.Render("Terminal size too small for puzzle UI."),
		"",
		m.st.Accent.Bold(true).Render(fmt.Sprintf("Resize to at least %dx%d.", MinWidth, MinHeight)),
	)
	return m.st.r.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
}

func tabLabel(p domain.Phase) string {
	switch p {
	case domain.PhaseEmail:
		return "invite form"
	case domain.PhaseSubmitted:
		return "request sent"
	default:
		return "puzzle node"
	}
}

func (m Model) viewHeader() string {
	s := m.snap
	sep := m.st.Muted.Render("│")
	segs := []string{
		m.st.Title.Width(12).Align(lipgloss.Center).Render("lattice"),
		m.st.Accent.Bold(true).Width(16).Align(lipgloss.Center).Render(tabLabel(s.Phase)),
		m.st.Muted.Width(14).Align(lipgloss.Center).Render(fmt.Sprintf("moves %d/%d", s.Presses, s.Optimal)),
		m.st.Muted.Width(20).Align(lipgloss.Center).Render("event access"),
	}
	return m.st.Frame.Render(strings.Join(segs, sep))
}

func (m Model) viewFooter(width int) string {
	bar := m.st.Rule.Render(strings.Repeat("─", width))
	keys := m.help.View(m.keys.helpFor(m.snap))
	return lipgloss.JoinVertical(lipgloss.Left, bar, m.st.r.PlaceHorizontal(width, lipgloss.Center, keys))
}

// row lays buttons out side by side with a fixed gap.
func row(buttons []string) string {
	parts := make([]string, 0, 2*len(buttons))
	for i, b := range buttons {
		if i > 0 {
			parts = append(parts, strings.Repeat(" ", buttonGap))
		}
		parts = append(parts, b)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) viewPuzzle(inner int) string {
	s := m.snap
	usable := inner - 4
	center := func(str string) string { return m.st.r.PlaceHorizontal(usable, lipgloss.Center, str) }

	iw := min(16, (usable-buttonGap*(domain.Indicators-1))/domain.Indicators)
	indicators := make([]string, domain.Indicators)
	for i := range indicators {
		selected := s.Focus.Row == session.IndicatorRow && s.Focus.Index == i
		marked := s.HintActive && int(s.HintButton) == i
		label := fmt.Sprintf("%s %s", domain.ButtonID(i).Label(), s.Current[i])
		indicators[i] = m.st.button(label, iw, selected, marked, colorOf(s.Current[i]))
	}

	rules := "Show Rules"
	if s.ShowRules {
		rules = "Hide Rules"
	}
	aw := min(18, (usable-buttonGap*2)/3)
	actions := make([]string, 0, 3)
	for i, label := range []string{"Hint", "Reset", rules} {
		selected := s.Focus.Row == session.ActionRow && s.Focus.Index == i
		actions = append(actions, m.st.button(label, aw, selected, false, Bright))
	}

	lines := []string{
		m.st.Title.Render("LATTICE NODE // ACCESS CHALLENGE"),
		m.st.Muted.Render("6-button custom puzzle. Use only controls below."),
		"",
		m.st.Muted.Render(truncate("Target   ["+s.Target.String()+"]", usable)),
		m.st.Muted.Render(truncate("Current  ["+s.Current.String()+"]", usable)),
		"",
		center(row(indicators)),
		center(row(actions)),
		"",
		m.st.Accent.Render(truncate(s.Status, usable)),
	}
	if s.ShowRules {
		lines = append(lines, "")
		for _, r := range automaton.Rules {
			lines = append(lines, m.st.Muted.Render(truncate(r, usable)))
		}
	}
	if s.Debug {
		lines = append(lines, "", m.st.Muted.Render("Debug: press F12 for instant solve"))
	}
	return m.st.r.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewEmail(inner int) string {
	s := m.snap
	usable := inner - 4
	center := func(str string) string { return m.st.r.PlaceHorizontal(usable, lipgloss.Center, str) }

	fieldWidth := max(usable-4, 20)
	text, fg := s.Email, Bright
	if text == "" {
		text, fg = emailHint, Muted
	}
	inputFocused := s.EmailFocus == session.EmailInput
	if inputFocused && len([]rune(text)) < fieldWidth-4 {
		text += "_"
	}
	field := m.st.button(text, fieldWidth, inputFocused, false, fg)

	bw := min(24, (usable-4)/2)
	onButtons := s.EmailFocus == session.EmailButtons
	buttons := []string{
		m.st.button("Confirm Invite", bw, onButtons && s.EmailButton == session.ButtonConfirm, false, Accent),
		m.st.button("Solve Again", bw, onButtons && s.EmailButton == session.ButtonSolveAgain, false, Muted),
	}

	lines := []string{
		m.st.Title.Render("EVENT INVITE REQUEST"),
		"",
		m.st.Accent.Render(truncate("Warning: confirmation is final. To change it later, solve the puzzle again.", usable)),
		"",
		m.st.Muted.Render("Email Input"),
		center(field),
		"",
		center(row(buttons)),
		"",
		m.st.Muted.Render(truncate("Tab switches between input and buttons. Enter activates the selected control.", usable)),
		m.st.Accent.Render(truncate(s.EmailStatus, usable)),
	}
	return m.st.r.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewSubmitted(inner int) string {
	s := m.snap
	lines := []string{
		"",
		"",
		m.st.Title.Render("Invite request submitted."),
		"",
		m.st.Muted.Render(truncate("Recorded email: "+s.SubmittedEmail, inner-4)),
		"",
		m.st.Accent.Render("Press Enter or Esc to close the SSH session."),
	}
	return m.st.r.NewStyle().Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
