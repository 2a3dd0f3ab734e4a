package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is the state of one indicator. Presses advance it around a fixed
// cycle of Colors values, so arithmetic on it is modulo Colors.
type Color uint8

const (
	Off Color = iota
	Green
	Blue
	Red
	Purple
	White
)

// Colors is the palette size K.
const Colors = 6

var colorNames = [Colors]string{"OFF", "GREEN", "BLUE", "RED", "PURPLE", "WHITE"}

func (c Color) String() string {
	if int(c) < Colors {
		return colorNames[c]
	}
	return "Color(" + strconv.Itoa(int(c)) + ")"
}

// Valid reports whether c is inside the palette.
func (c Color) Valid() bool { return int(c) < Colors }

// Add advances c by delta steps around the cycle.
func (c Color) Add(delta uint8) Color {
	return Color((int(c) + int(delta)) % Colors)
}

// ParseColor accepts a palette name (any case) or its ordinal 0..5.
func ParseColor(s string) (Color, error) {
	tok := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range colorNames {
		if tok == name {
			return Color(i), nil
		}
	}
	if n, err := strconv.Atoi(tok); err == nil && n >= 0 && n < Colors {
		return Color(n), nil
	}
	return Off, fmt.Errorf("invalid color %q: use 0-%d or %s", s, Colors-1, strings.Join(colorNames[:], "/"))
}

// Phase is the top-level stage of a player session.
type Phase int

const (
	PhaseSplash Phase = iota
	PhasePuzzle
	PhaseEmail
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseSplash:
		return "splash"
	case PhasePuzzle:
		return "puzzle"
	case PhaseEmail:
		return "email"
	case PhaseSubmitted:
		return "submitted"
	default:
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
}

var phaseTransitions = map[Phase][]Phase{
	PhaseSplash: {PhasePuzzle},
	PhasePuzzle: {PhaseEmail},
	PhaseEmail:  {PhaseSubmitted, PhasePuzzle}, // confirm, or solve again
}

// CanTransitionTo checks the phase graph. Submitted has no exits.
func (p Phase) CanTransitionTo(next Phase) bool {
	for _, allowed := range phaseTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}
