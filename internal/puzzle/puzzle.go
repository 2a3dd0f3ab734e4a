// Package puzzle tracks one player's progress toward a target: presses,
// hints and the debug bypass.
package puzzle

import (
	"context"
	"errors"
	"fmt"

	"svw.info/lattice/internal/automaton"
	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/ports"
)

var (
	// ErrAlreadySolved is returned by RequestHint when nothing is left to press.
	ErrAlreadySolved = errors.New("puzzle already solved")
	// ErrDebugDisabled is returned by ForceSolve unless debug was enabled at
	// construction. It signals a caller bug, not a player action.
	ErrDebugDisabled = errors.New("force solve requires debug mode")
)

// Engine is the slice of the use-case service a puzzle needs.
type Engine interface {
	Solve(ctx context.Context, start, target domain.Vector) ([]domain.ButtonID, ports.Stats, error)
	Hint(ctx context.Context, current, target domain.Vector) (domain.Hint, bool, error)
}

// Puzzle is Unsolved until current equals target; Solved is terminal
// until Restart.
type Puzzle struct {
	table  automaton.Table
	engine Engine
	debug  bool

	seed    int64
	initial domain.Vector
	current domain.Vector
	target  domain.Vector
	presses int
	optimal int
	solved  bool
}

// New starts a puzzle at all-OFF aiming for p.Target.
func New(ctx context.Context, table automaton.Table, engine Engine, p *domain.Puzzle, debug bool) (*Puzzle, error) {
	pz := &Puzzle{table: table, engine: engine, debug: debug}
	if err := pz.Restart(ctx, p); err != nil {
		return nil, err
	}
	return pz, nil
}

// Restart swaps in a fresh target and zeroes the press count.
func (p *Puzzle) Restart(ctx context.Context, next *domain.Puzzle) error {
	if next == nil {
		return errors.New("restart: nil puzzle")
	}
	path, _, err := p.engine.Solve(ctx, domain.AllOff, next.Target)
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	p.seed = next.Seed
	p.initial = domain.AllOff
	p.current = domain.AllOff
	p.target = next.Target
	p.presses = 0
	p.optimal = len(path)
	p.solved = p.current == p.target
	return nil
}

// Press applies button b. It reports false and changes nothing once solved.
func (p *Puzzle) Press(b domain.ButtonID) bool {
	if p.solved {
		return false
	}
	p.current = p.table.Apply(p.current, b)
	p.presses++
	p.solved = p.current == p.target
	return true
}

// RequestHint returns the first button of a shortest path from the current
// configuration. It never mutates the puzzle.
func (p *Puzzle) RequestHint(ctx context.Context) (domain.Hint, error) {
	if p.solved {
		return domain.Hint{}, ErrAlreadySolved
	}
	h, found, err := p.engine.Hint(ctx, p.current, p.target)
	if err != nil {
		return domain.Hint{}, err
	}
	if !found {
		return domain.Hint{}, ErrAlreadySolved
	}
	return h, nil
}

// ForceSolve jumps to the target without counting presses.
func (p *Puzzle) ForceSolve() error {
	if !p.debug {
		return ErrDebugDisabled
	}
	p.current = p.target
	p.solved = true
	return nil
}

// Reset returns to the initial configuration, keeping the target.
func (p *Puzzle) Reset() {
	if p.solved {
		return
	}
	p.current = p.initial
	p.presses = 0
}

func (p *Puzzle) Current() domain.Vector { return p.current }
func (p *Puzzle) Target() domain.Vector  { return p.target }
func (p *Puzzle) Presses() int           { return p.presses }
func (p *Puzzle) Optimal() int           { return p.optimal }
func (p *Puzzle) Solved() bool           { return p.solved }
func (p *Puzzle) Debug() bool            { return p.debug }
func (p *Puzzle) Seed() int64            { return p.seed }
