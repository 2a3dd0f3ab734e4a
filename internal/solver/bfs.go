package solver

import (
	"errors"

	"svw.info/lattice/internal/automaton"
	"svw.info/lattice/internal/domain"
)

// ErrUnreachable is returned when no press sequence connects start and
// target. It only happens under a wiring that fails automaton.Validate.
var ErrUnreachable = errors.New("target unreachable from start")

// BFSSolver is a breadth-first search over the packed state space.
// It keeps no state between calls.
type BFSSolver struct {
	Table automaton.Table
}

func NewBFSSolver(t automaton.Table) *BFSSolver { return &BFSSolver{Table: t} }

// --- helpers used by Solve/Distance (in other files) ---

const unvisited = -1

// search records, for every discovered code, the code it was reached from
// and the button used. The slices are sized to the whole state space.
type search struct {
	parent []int32
	via    []domain.ButtonID
}

func newSearch() *search {
	s := &search{
		parent: make([]int32, domain.StateCount),
		via:    make([]domain.ButtonID, domain.StateCount),
	}
	for i := range s.parent {
		s.parent[i] = unvisited
	}
	return s
}

func (s *search) visited(code int) bool { return s.parent[code] != unvisited }

// path walks parent links back from goal and returns presses in order.
func (s *search) path(start, goal int) []domain.ButtonID {
	var rev []domain.ButtonID
	for cur := goal; cur != start; cur = int(s.parent[cur]) {
		rev = append(rev, s.via[cur])
	}
	out := make([]domain.ButtonID, len(rev))
	for i, b := range rev {
		out[len(rev)-1-i] = b
	}
	return out
}
