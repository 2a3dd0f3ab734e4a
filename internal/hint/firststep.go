package hint

import (
	"context"
	"fmt"

	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/metrics"
	"svw.info/lattice/internal/ports"
)

// FirstStep suggests the first press of a freshly computed shortest path.
type FirstStep struct {
	Solver ports.Solver
}

func NewFirstStep(s ports.Solver) *FirstStep { return &FirstStep{Solver: s} }

// Hint returns false when current already equals target.
func (h *FirstStep) Hint(ctx context.Context, current, target domain.Vector) (domain.Hint, bool, error) {
	path, st, err := h.Solver.Solve(ctx, current, target)
	metrics.ObserveSolve(st.Duration, st.Nodes)
	if err != nil {
		return domain.Hint{}, false, err
	}
	if len(path) == 0 {
		return domain.Hint{}, false, nil
	}
	first := path[0]
	return domain.Hint{
		Button:    first,
		Remaining: len(path),
		Message:   fmt.Sprintf("Hint: press indicator %s.", first.Label()),
	}, true, nil
}
