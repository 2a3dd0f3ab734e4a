package generator

import "svw.info/lattice/internal/automaton"

// DefaultPresses is how many random presses build a target.
const DefaultPresses = 6

// RandomGenerator builds targets by pressing random buttons from all-OFF,
// so every target it returns is solvable by construction.
type RandomGenerator struct {
	Table   automaton.Table
	Presses int
}

// NewRandomGenerator wires a generator over the given button table.
func NewRandomGenerator(t automaton.Table) *RandomGenerator {
	return &RandomGenerator{Table: t, Presses: DefaultPresses}
}

// Note: The Generate method is implemented in random.go next to its helpers.
