package solver

import (
	"context"
	"time"

	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/ports"
)

// Solve returns one shortest press sequence from start to target. Buttons
// are expanded in ID order, so equal-length paths resolve the same way on
// every call.
func (s *BFSSolver) Solve(ctx context.Context, start, target domain.Vector) ([]domain.ButtonID, ports.Stats, error) {
	begin := time.Now()
	if start == target {
		return []domain.ButtonID{}, ports.Stats{Duration: time.Since(begin)}, nil
	}
	from, goal := start.Pack(), target.Pack()
	st := newSearch()
	st.parent[from] = int32(from)

	frontier := []int{from}
	nodes := 0
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, ports.Stats{Nodes: nodes, Duration: time.Since(begin)}, err
		}
		next := make([]int, 0, len(frontier)*domain.Indicators)
		for _, code := range frontier {
			v := domain.Unpack(code)
			for b := 0; b < domain.Indicators; b++ {
				nodes++
				nc := s.Table.Apply(v, domain.ButtonID(b)).Pack()
				if st.visited(nc) {
					continue
				}
				st.parent[nc] = int32(code)
				st.via[nc] = domain.ButtonID(b)
				if nc == goal {
					return st.path(from, goal), ports.Stats{Nodes: nodes, Duration: time.Since(begin)}, nil
				}
				next = append(next, nc)
			}
		}
		frontier = next
	}
	return nil, ports.Stats{Nodes: nodes, Duration: time.Since(begin)}, ErrUnreachable
}

// Distance is the length of a shortest path, without the path itself.
func (s *BFSSolver) Distance(ctx context.Context, start, target domain.Vector) (int, error) {
	seq, _, err := s.Solve(ctx, start, target)
	if err != nil {
		return 0, err
	}
	return len(seq), nil
}
