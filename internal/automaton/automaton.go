// Package automaton holds the button wiring and the single transformation
// every other component composes: Apply.
package automaton

import (
	"errors"
	"fmt"

	"svw.info/lattice/internal/domain"
)

var (
	// ErrMalformedTable reports an effect outside the vector or palette, or a
	// button that changes nothing.
	ErrMalformedTable = errors.New("malformed button table")
	// ErrUnreachable reports a wiring whose state graph does not span every
	// configuration, so some targets could never be solved.
	ErrUnreachable = errors.New("state graph is not connected")
)

// Effect adds Delta (mod Colors) to indicator Index.
type Effect struct {
	Index int   `json:"index"`
	Delta uint8 `json:"delta"`
}

// Action is everything one button does.
type Action []Effect

// Table maps every ButtonID to its Action.
type Table [domain.Indicators]Action

// ringDeltas is indexed by the ring distance between the pressed button
// and the indicator.
var ringDeltas = [4]uint8{
	0: 2, // pressed
	1: 1, // neighbours
	2: 5, // one step back
	3: 3, // opposite
}

// Default returns the fixed puzzle wiring: every button touches all six
// indicators by an amount depending on ring distance.
func Default() Table {
	var t Table
	n := domain.Indicators
	for b := 0; b < n; b++ {
		act := make(Action, 0, n)
		for i := 0; i < n; i++ {
			cw := (i - b + n) % n
			ccw := (b - i + n) % n
			act = append(act, Effect{Index: i, Delta: ringDeltas[min(cw, ccw)]})
		}
		t[b] = act
	}
	return t
}

// Rules describes the Default wiring for players.
var Rules = []string{
	"1) Pressed button advances by +2 color steps (OFF>GREEN>...>WHITE>OFF)",
	"2) Adjacent buttons (distance 1) advance by +1 step",
	"3) Distance-2 buttons move backward by 1 step",
	"4) Opposite button (distance 3) advances by +3 steps",
}

// Apply returns the vector after pressing b. Indices not named by the
// action keep their state.
func (t *Table) Apply(v domain.Vector, b domain.ButtonID) domain.Vector {
	for _, e := range t[b] {
		v[e.Index] = v[e.Index].Add(e.Delta)
	}
	return v
}

// ApplyAll folds Apply over seq.
func (t *Table) ApplyAll(v domain.Vector, seq []domain.ButtonID) domain.Vector {
	for _, b := range seq {
		v = t.Apply(v, b)
	}
	return v
}

// Reachable counts the configurations reachable from all-OFF.
func (t *Table) Reachable() int {
	var seen [domain.StateCount]bool
	queue := make([]int, 0, domain.StateCount)
	queue = append(queue, domain.AllOff.Pack())
	seen[queue[0]] = true
	for head := 0; head < len(queue); head++ {
		v := domain.Unpack(queue[head])
		for b := 0; b < domain.Indicators; b++ {
			code := t.Apply(v, domain.ButtonID(b)).Pack()
			if !seen[code] {
				seen[code] = true
				queue = append(queue, code)
			}
		}
	}
	return len(queue)
}

// Validate is the startup check over a wiring. A table that passes
// guarantees a path between any two configurations.
func Validate(t Table) error {
	for b, act := range t {
		effective := false
		for _, e := range act {
			if e.Index < 0 || e.Index >= domain.Indicators {
				return fmt.Errorf("%w: button %d targets indicator %d", ErrMalformedTable, b, e.Index)
			}
			if int(e.Delta) >= domain.Colors {
				return fmt.Errorf("%w: button %d delta %d exceeds palette", ErrMalformedTable, b, e.Delta)
			}
			if e.Delta != 0 {
				effective = true
			}
		}
		if !effective {
			return fmt.Errorf("%w: button %d has no effect", ErrMalformedTable, b)
		}
	}
	if n := t.Reachable(); n != domain.StateCount {
		return fmt.Errorf("%w: %d of %d configurations reachable", ErrUnreachable, n, domain.StateCount)
	}
	return nil
}
