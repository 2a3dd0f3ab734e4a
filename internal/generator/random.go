package generator

import (
	"context"
	"math/rand"
	"time"

	"svw.info/lattice/internal/domain"
	"svw.info/lattice/internal/ports"
)

// Generate draws the press sequence from seed and applies it to all-OFF.
func (g *RandomGenerator) Generate(ctx context.Context, seed int64) (*domain.Puzzle, ports.Stats, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, ports.Stats{}, err
	}
	rng := rand.New(rand.NewSource(seed))
	presses := make([]domain.ButtonID, g.Presses)
	v := domain.AllOff
	for i := range presses {
		b := domain.ButtonID(rng.Intn(domain.Indicators))
		presses[i] = b
		v = g.Table.Apply(v, b)
	}
	p := &domain.Puzzle{
		Seed:      seed,
		Target:    v,
		Presses:   presses,
		CreatedAt: time.Now().UnixNano(),
	}
	return p, ports.Stats{Nodes: len(presses), Duration: time.Since(start)}, nil
}

// ProcessSeeder draws seeds from the process-wide generator, which the
// runtime seeds randomly at startup.
type ProcessSeeder struct{}

func (ProcessSeeder) Seed() int64 { return rand.Int63() }
