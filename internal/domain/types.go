package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Indicators is the fixed number of indicators and buttons.
const Indicators = 6

// StateCount is Colors^Indicators, the size of the whole state space.
const StateCount = 46656

// Vector holds the six indicator states. It is a value type: every
// transformation returns a new Vector.
type Vector [Indicators]Color

// AllOff is the starting configuration of every puzzle.
var AllOff = Vector{}

// Pack encodes v as a base-Colors number with index 0 most significant.
func (v Vector) Pack() int {
	code := 0
	for _, c := range v {
		code = code*Colors + int(c)
	}
	return code
}

// Unpack is the inverse of Pack. code must be in [0, StateCount).
func Unpack(code int) Vector {
	var v Vector
	for i := Indicators - 1; i >= 0; i-- {
		v[i] = Color(code % Colors)
		code /= Colors
	}
	return v
}

func (v Vector) String() string {
	parts := make([]string, Indicators)
	for i, c := range v {
		parts[i] = c.String()
	}
	return strings.Join(parts, " | ")
}

// Ordinals renders v as comma separated digits, e.g. "5, 4, 1, 5, 4, 1".
func (v Vector) Ordinals() string {
	parts := make([]string, Indicators)
	for i, c := range v {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, ", ")
}

// ParseVector reads six colors separated by commas, pipes or whitespace.
func ParseVector(raw string) (Vector, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '|' || r == ' ' || r == '\t'
	})
	if len(fields) != Indicators {
		return Vector{}, fmt.Errorf("expected %d values, got %d", Indicators, len(fields))
	}
	var v Vector
	for i, f := range fields {
		c, err := ParseColor(f)
		if err != nil {
			return Vector{}, err
		}
		v[i] = c
	}
	return v, nil
}

// ButtonID identifies a physical button, 0..5.
type ButtonID uint8

// Label is the 1-based name shown to players.
func (b ButtonID) Label() string { return strconv.Itoa(int(b) + 1) }

func (b ButtonID) String() string { return strconv.Itoa(int(b)) }

// Puzzle is one generated target together with how it was made.
type Puzzle struct {
	Seed      int64      `json:"seed"`
	Target    Vector     `json:"target"`
	Presses   []ButtonID `json:"presses,omitempty"`
	CreatedAt int64      `json:"createdAt,omitempty"`
}

// Hint is the next button on a shortest path to the target.
type Hint struct {
	Button    ButtonID `json:"button"`
	Remaining int      `json:"remaining"` // path length including Button
	Message   string   `json:"message,omitempty"`
}

// Submission is an email address recorded after a solved puzzle.
type Submission struct {
	Email       string    `json:"email"`
	SubmittedAt time.Time `json:"submittedAt"`
}
